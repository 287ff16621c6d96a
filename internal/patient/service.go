package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/inference"
	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/notification"
)

// Notifier is the slice of the notification feed the registry writes to.
type Notifier interface {
	Push(title string, kind notification.Kind) notification.Notification
	SetLastUpdate(text string)
}

// Archiver stores finished discharge summaries.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// MetricsRecorder interface for recording patient metrics
type MetricsRecorder interface {
	RecordPatientOperation(ctx context.Context, operation string)
}

type Service struct {
	store     Store
	notifier  Notifier
	publisher messaging.PublisherInterface
	archiver  Archiver
	metrics   MetricsRecorder
	rng       Rand
	now       func() time.Time
	log       logrus.FieldLogger
}

type Option func(*Service)

func WithRand(r Rand) Option { return func(s *Service) { s.rng = r } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithPublisher(p messaging.PublisherInterface) Option { return func(s *Service) { s.publisher = p } }
func WithArchiver(a Archiver) Option { return func(s *Service) { s.archiver = a } }
func WithMetrics(m MetricsRecorder) Option { return func(s *Service) { s.metrics = m } }
func WithLogger(l logrus.FieldLogger) Option { return func(s *Service) { s.log = l } }

func NewService(store Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:     store,
		notifier:  notifier,
		publisher: messaging.NoopPublisher{},
		rng:       SharedRand{},
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying registry to collaborators that mutate it
// directly, such as the background simulator.
func (s *Service) Store() Store { return s.store }

func (s *Service) List(filter ListFilter) []Patient {
	all := s.store.List()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	return lo.Filter(all, func(p Patient, _ int) bool {
		if filter.Status != "" && !matchesStatus(p.Status, filter.Status) {
			return false
		}
		if filter.Department != "" && !strings.EqualFold(p.SuggestedDepartment, filter.Department) {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.ID), search) {
			return false
		}
		return true
	})
}

// matchesStatus treats "active" as seen or admitted, the dashboard's middle column.
func matchesStatus(actual, want Status) bool {
	if want == "active" {
		return actual == StatusSeen || actual == StatusAdmitted
	}
	return actual == want
}

func (s *Service) Get(id string) (Patient, error) {
	return s.store.Get(id)
}

func (s *Service) Stats() Stats {
	all := s.store.List()
	return Stats{
		Total:    len(all),
		Critical: lo.CountBy(all, func(p Patient) bool { return inference.Critical(string(p.Severity)) }),
		Waiting:  lo.CountBy(all, func(p Patient) bool { return p.Status == StatusWaiting }),
	}
}

// Register runs reception intake: infer severity and department from the
// symptom, write the AI summary and queue the patient as waiting.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Patient, error) {
	if err := normalizeRegister(&req); err != nil {
		return Patient{}, err
	}

	severity := Severity(inference.Severity(req.Symptom))
	dept := inference.Department(req.Symptom)
	advice := inference.AdviceLines[s.rng.Intn(len(inference.AdviceLines))]

	p := Patient{
		Name:                req.Name,
		Age:                 req.Age,
		Gender:              req.Gender,
		Phone:               req.Phone,
		Complaints:          []Complaint{{Symptom: req.Symptom, Duration: req.Duration, Unit: req.Unit}},
		Severity:            severity,
		SuggestedDepartment: dept,
		AISummary:           inference.IntakeSummary(req.Age, req.Symptom, dept, advice),
		Notes:               []string{},
		Allergies:           req.Allergies,
		Status:              StatusWaiting,
		AdmittedDate:        s.now(),
	}

	created, err := s.insert(ctx, p, "intake")
	if err != nil {
		return Patient{}, err
	}
	s.record(ctx, "register")
	return created, nil
}

// Add inserts an already-built record, e.g. a document import. The record
// always enters the queue as waiting.
func (s *Service) Add(ctx context.Context, p Patient) (Patient, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Patient{}, &ValidationError{Field: "name", Message: "name is required"}
	}
	p.Status = StatusWaiting
	if p.AdmittedDate.IsZero() {
		p.AdmittedDate = s.now()
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	created, err := s.insert(ctx, p, "import")
	if err != nil {
		return Patient{}, err
	}
	s.record(ctx, "import")
	return created, nil
}

func (s *Service) insert(ctx context.Context, p Patient, source string) (Patient, error) {
	keepID := p.ID != ""
	for attempt := 0; attempt < 20; attempt++ {
		if !keepID {
			p.ID = fmt.Sprintf("P-%d", s.rng.Intn(10000))
		}
		err := s.store.Prepend(p)
		if err == nil {
			break
		}
		if err != ErrDuplicateID || keepID || attempt == 19 {
			return Patient{}, fmt.Errorf("failed to add patient: %w", err)
		}
	}

	s.notifier.Push("New Admission: "+p.Name, notification.KindSuccess)
	s.notifier.SetLastUpdate("New patient registered: " + p.Name)

	event := messaging.PatientRegisteredEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientRegistered),
		Data: messaging.PatientRegisteredData{
			PatientID:  p.ID,
			Name:       p.Name,
			Age:        p.Age,
			Severity:   string(p.Severity),
			Department: p.SuggestedDepartment,
			Source:     source,
			CreatedAt:  p.AdmittedDate,
		},
	}
	s.publish(ctx, messaging.EventPatientRegistered, event)

	s.log.WithFields(logrus.Fields{"patient_id": p.ID, "source": source}).Info("Patient registered")
	return p.Clone(), nil
}

func normalizeRegister(req *RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Symptom = strings.TrimSpace(req.Symptom)
	if req.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if req.Age <= 0 {
		return &ValidationError{Field: "age", Message: "age must be a positive number"}
	}
	if req.Symptom == "" {
		return &ValidationError{Field: "symptom", Message: "symptom is required"}
	}
	if req.Duration <= 0 {
		req.Duration = 1
	}
	switch req.Unit {
	case "":
		req.Unit = UnitHours
	case UnitHours, UnitDays, UnitWeeks:
	default:
		return &ValidationError{Field: "unit", Message: "unit must be Hours, Days or Weeks"}
	}
	if req.Gender == "" {
		req.Gender = "Male"
	}
	req.Allergies = NormalizeAllergies(req.Allergies)
	return nil
}

// NormalizeAllergies trims entries and drops blanks and case-insensitive
// duplicates, keeping first spelling.
func NormalizeAllergies(in []string) []string {
	trimmed := lo.FilterMap(in, func(a string, _ int) (string, bool) {
		a = strings.TrimSpace(a)
		return a, a != ""
	})
	out := lo.UniqBy(trimmed, strings.ToLower)
	if out == nil {
		return []string{}
	}
	return out
}

func (s *Service) MarkSeen(ctx context.Context, id, actor string) (Patient, error) {
	var old Status
	p, err := s.store.Update(id, func(p *Patient) error {
		old = p.Status
		return p.MoveTo(StatusSeen)
	})
	if err != nil {
		return Patient{}, err
	}
	s.notifier.Push("Status: "+p.Name+" is being seen", notification.KindSuccess)
	s.notifier.SetLastUpdate(p.Name + " marked as SEEN")
	s.PublishStatus(ctx, p, old, actor)
	s.record(ctx, "seen")
	return p, nil
}

// Admit moves a patient into a free bed with the admission vitals and
// diagnosis as the three newest notes.
func (s *Service) Admit(ctx context.Context, id string, req AdmissionRequest, actor string) (Patient, error) {
	if strings.TrimSpace(req.BedID) == "" {
		return Patient{}, ErrNoBedSelected
	}
	ward, ok := findWard(req.WardID)
	if !ok {
		return Patient{}, ErrUnknownWard
	}
	withVitalDefaults(&req.Vitals)

	var old Status
	p, err := s.store.UpdateWithPeers(id, func(p *Patient, peers []Patient) error {
		exists, free := bedAvailable(buildWards(peers), ward.id, req.BedID)
		if !exists || !free {
			return ErrBedUnavailable
		}
		old = p.Status
		if err := p.MoveTo(StatusAdmitted); err != nil {
			return err
		}
		diagnosis := strings.TrimSpace(req.Diagnosis)
		if diagnosis == "" {
			diagnosis = inference.FirstSentence(p.AISummary)
		}
		// The admission note rides on the diagnosis line; admission always
		// writes exactly three notes.
		diagnosisNote := "Diagnosis: " + diagnosis
		if n := strings.TrimSpace(req.Note); n != "" {
			diagnosisNote += " | Note: " + n
		}
		p.PrependNotes(
			fmt.Sprintf("Admitted to %s Bed %s", ward.name, req.BedID),
			fmt.Sprintf("Vitals: BP %s, HR %s", req.Vitals.BP, req.Vitals.HR),
			diagnosisNote,
		)
		p.Ward = ward.name
		p.Room = req.BedID
		p.Condition = "Admitted"
		return nil
	})
	if err != nil {
		return Patient{}, err
	}

	s.notifier.Push(fmt.Sprintf("Admission: %s to %s (%s)", p.Name, p.Ward, p.Room), notification.KindSuccess)
	s.notifier.SetLastUpdate(p.Name + " ADMITTED to " + p.Ward)
	s.PublishStatus(ctx, p, old, actor)
	s.record(ctx, "admit")
	return p, nil
}

func withVitalDefaults(v *Vitals) {
	if strings.TrimSpace(v.BP) == "" {
		v.BP = "120/80"
	}
	if strings.TrimSpace(v.HR) == "" {
		v.HR = "72"
	}
	if strings.TrimSpace(v.Temp) == "" {
		v.Temp = "98.6"
	}
	if strings.TrimSpace(v.SpO2) == "" {
		v.SpO2 = "98"
	}
}

// DischargeDraft returns the prefilled discharge form for a patient.
func (s *Service) DischargeDraft(id string) (DischargeForm, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return DischargeForm{}, err
	}
	return draftFor(p), nil
}

// Discharge finalizes the stay with the edited summary. Only seen and
// admitted patients can leave. "Discharged with summary." becomes the
// newest note, so it leads the list like every other note the registry
// writes.
func (s *Service) Discharge(ctx context.Context, id string, form DischargeForm, actor string) (Patient, error) {
	var old Status
	p, err := s.store.Update(id, func(p *Patient) error {
		old = p.Status
		if err := p.MoveTo(StatusDischarged); err != nil {
			return err
		}
		p.DischargeReport = &DischargeReport{
			Summary:      form.Summary,
			Medications:  form.Medications,
			Instructions: form.Instructions,
			Date:         s.now(),
		}
		p.PrependNotes("Discharged with summary.")
		return nil
	})
	if err != nil {
		return Patient{}, err
	}

	s.notifier.Push("Discharge: "+p.Name, notification.KindSuccess)
	s.notifier.SetLastUpdate(p.Name + " DISCHARGED")
	s.PublishStatus(ctx, p, old, actor)
	s.archive(ctx, p)
	s.record(ctx, "discharge")
	return p, nil
}

func (s *Service) archive(ctx context.Context, p Patient) {
	if s.archiver == nil || p.DischargeReport == nil {
		return
	}
	key := fmt.Sprintf("discharge-summaries/%s.txt", p.ID)
	if err := s.archiver.Put(ctx, key, []byte(DischargeText(p)), "text/plain; charset=utf-8"); err != nil {
		s.log.WithError(err).WithField("patient_id", p.ID).Warn("Failed to archive discharge summary")
	}
}

// AddNote prepends a free-text clinical note.
func (s *Service) AddNote(ctx context.Context, id, note string) (Patient, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Patient{}, &ValidationError{Field: "note", Message: "note is required"}
	}
	p, err := s.store.Update(id, func(p *Patient) error {
		if p.Status.Terminal() {
			return &TransitionError{PatientID: p.ID, From: p.Status, To: p.Status}
		}
		p.PrependNotes(note)
		return nil
	})
	if err != nil {
		return Patient{}, err
	}
	s.publish(ctx, messaging.EventPatientNoteAdded, messaging.PatientNoteAddedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientNoteAdded),
		Data:      messaging.PatientNoteAddedData{PatientID: p.ID, Note: note, AddedAt: s.now().UTC()},
	})
	return p, nil
}

// SetSeverity overrides the triage severity.
func (s *Service) SetSeverity(ctx context.Context, id string, sev Severity, actor string) (Patient, error) {
	if !sev.Valid() {
		return Patient{}, &ValidationError{Field: "severity", Message: "unknown severity"}
	}
	var old Severity
	p, err := s.store.Update(id, func(p *Patient) error {
		if p.Status.Terminal() {
			return &TransitionError{PatientID: p.ID, From: p.Status, To: p.Status}
		}
		old = p.Severity
		p.Severity = sev
		return nil
	})
	if err != nil {
		return Patient{}, err
	}
	if old != sev {
		kind := notification.KindInfo
		if inference.Critical(string(sev)) {
			kind = notification.KindAlert
		}
		s.notifier.Push(fmt.Sprintf("Alert: %s is now %s", p.Name, strings.ToUpper(string(sev))), kind)
		s.notifier.SetLastUpdate(fmt.Sprintf("%s priority changed to %s", p.Name, strings.ToUpper(string(sev))))
		s.PublishSeverity(ctx, p, old, actor)
	}
	return p, nil
}

// ActivateCardiacEmergency is the voice-command path: escalate the
// patient, reserve the cardiac bed and alert the team. ICU-01 is held back
// for this protocol; when a registry patient already occupies it the next
// free ICU bed is used instead.
func (s *Service) ActivateCardiacEmergency(ctx context.Context, id, actor string) (Patient, error) {
	var oldStatus Status
	var oldSeverity Severity
	bed := cardiacBed
	p, err := s.store.UpdateWithPeers(id, func(p *Patient, peers []Patient) error {
		if p.Status.Terminal() {
			return &TransitionError{PatientID: p.ID, From: p.Status, To: StatusAdmitted}
		}
		oldStatus, oldSeverity = p.Status, p.Severity
		p.Severity = SeverityEmergency
		if p.Status != StatusAdmitted {
			if err := p.MoveTo(StatusAdmitted); err != nil {
				return err
			}
			var full bool
			bed, full = reserveCardiacBed(peers, p.ID)
			if full {
				s.log.WithFields(logrus.Fields{"patient_id": p.ID, "bed": bed}).Warn("ICU full, cardiac bed double booked")
			}
			p.Ward = "ICU"
			p.Room = bed
			p.Condition = "Critical"
		} else if p.Room != "" {
			bed = p.Room
		}
		p.PrependNotes("VOICE COMMAND: Cardiac Emergency Protocol Activated")
		return nil
	})
	if err != nil {
		return Patient{}, err
	}

	// Pushed oldest first so the critical alert tops the feed.
	s.notifier.Push("Team Alerted: Dr. Chen, Dr. Ross", notification.KindInfo)
	s.notifier.Push("Orders Placed: ECG + Troponin I + CXR", notification.KindInfo)
	s.notifier.Push(fmt.Sprintf("CRITICAL: Cardiac Bed Reserved (%s) for %s", bed, p.Name), notification.KindAlert)
	s.notifier.SetLastUpdate(p.Name + " CARDIAC EMERGENCY")
	if oldStatus != p.Status {
		s.PublishStatus(ctx, p, oldStatus, actor)
	}
	if oldSeverity != p.Severity {
		s.PublishSeverity(ctx, p, oldSeverity, actor)
	}
	s.record(ctx, "cardiac_emergency")
	return p, nil
}

// Wards returns the floor plan with current occupancy.
func (s *Service) Wards() []Ward {
	return buildWards(s.store.List())
}

// PublishStatus emits a status change event. Exposed for the simulator.
func (s *Service) PublishStatus(ctx context.Context, p Patient, old Status, actor string) {
	s.publish(ctx, messaging.EventPatientStatusChanged, messaging.PatientStatusChangedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientStatusChanged),
		Data: messaging.PatientStatusChangedData{
			PatientID: p.ID,
			OldStatus: string(old),
			NewStatus: string(p.Status),
			Ward:      p.Ward,
			Bed:       p.Room,
			Actor:     actor,
			ChangedAt: s.now().UTC(),
		},
	})
}

// PublishSeverity emits a severity change event.
func (s *Service) PublishSeverity(ctx context.Context, p Patient, old Severity, actor string) {
	s.publish(ctx, messaging.EventPatientSeverityChanged, messaging.PatientSeverityChangedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientSeverityChanged),
		Data: messaging.PatientSeverityChangedData{
			PatientID:   p.ID,
			OldSeverity: string(old),
			NewSeverity: string(p.Severity),
			Actor:       actor,
			ChangedAt:   s.now().UTC(),
		},
	})
}

func (s *Service) publish(ctx context.Context, key string, event interface{}) {
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.log.WithError(err).WithField("routing_key", key).Warn("Failed to publish event")
	}
}

func (s *Service) record(ctx context.Context, op string) {
	if s.metrics != nil {
		s.metrics.RecordPatientOperation(ctx, op)
	}
}
