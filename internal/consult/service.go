package consult

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/archive"
	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/patient"
	"github.com/MedFlow-Health/operations-service/internal/speech"
)

var (
	ErrIncompleteMedication = errors.New("medication needs a name and a dosage")
	ErrMedicationIndex      = errors.New("no medication at that position")
	ErrNoTranscript         = errors.New("no transcript recorded")
)

// Status tracks the scribe for one consultation.
type Status string

const (
	StatusReady     Status = "ready"
	StatusRecording Status = "recording"
	StatusReview    Status = "review"
)

const processedSummary = "Consultation processed. Structured data extracted."

// Consultation is the consultant's working state for the patient they have
// open. Opening a different patient starts over.
type Consultation struct {
	PatientID      string       `json:"patientId"`
	Status         Status       `json:"status"`
	Transcript     string       `json:"transcript"`
	Scripted       bool         `json:"scripted"`
	EMR            EMR          `json:"emr"`
	DischargeDraft string       `json:"dischargeDraft"`
	Summary        string       `json:"summary"`
	Medications    []Medication `json:"medications"`
	Alerts         []string     `json:"alerts"`
	RedFlags       []string     `json:"redFlags"`
}

func (c *Consultation) clone() Consultation {
	out := *c
	out.Medications = append([]Medication{}, c.Medications...)
	out.Alerts = append([]string{}, c.Alerts...)
	out.RedFlags = append([]string{}, c.RedFlags...)
	return out
}

type PatientGetter interface {
	Get(id string) (patient.Patient, error)
}

type Service struct {
	mu        sync.Mutex
	open      map[string]*Consultation
	patients  PatientGetter
	input     speech.Input
	archiver  archive.Archiver
	messenger messaging.ExternalMessenger
	now       func() time.Time
	log       logrus.FieldLogger
}

func NewService(patients PatientGetter, input speech.Input, log logrus.FieldLogger) *Service {
	if input == nil {
		input = speech.UnsupportedInput{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		open:      make(map[string]*Consultation),
		patients:  patients,
		input:     input,
		archiver:  archive.NoopArchiver{},
		messenger: messaging.LinkMessenger{},
		now:       time.Now,
		log:       log,
	}
}

func (s *Service) SetArchiver(a archive.Archiver)             { s.archiver = a }
func (s *Service) SetMessenger(m messaging.ExternalMessenger) { s.messenger = m }
func (s *Service) SetClock(now func() time.Time)              { s.now = now }

// consultation returns the session's state for p, starting fresh when the
// session had another patient open. Callers hold s.mu.
func (s *Service) consultation(sessionID string, p patient.Patient) *Consultation {
	c, ok := s.open[sessionID]
	if !ok || c.PatientID != p.ID {
		c = &Consultation{PatientID: p.ID, Status: StatusReady, Medications: []Medication{}, Alerts: []string{}}
		s.open[sessionID] = c
	}
	c.RedFlags = RedFlags(p)
	return c
}

// update runs fn against the session's consultation for patientID.
func (s *Service) update(sessionID, patientID string, fn func(p patient.Patient, c *Consultation) error) (Consultation, error) {
	p, err := s.patients.Get(patientID)
	if err != nil {
		return Consultation{}, fmt.Errorf("failed to open consultation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.consultation(sessionID, p)
	if fn != nil {
		if err := fn(p, c); err != nil {
			return Consultation{}, err
		}
		c.Alerts = CheckPrescription(c.Medications, p.Allergies)
	}
	return c.clone(), nil
}

// Open selects a patient for the session and returns its consultation.
func (s *Service) Open(sessionID, patientID string) (Consultation, error) {
	return s.update(sessionID, patientID, nil)
}

// Record listens for the dictated consultation and processes it. Without a
// working speech input the default script is used.
func (s *Service) Record(ctx context.Context, sessionID, patientID string) (Consultation, error) {
	if _, err := s.update(sessionID, patientID, func(_ patient.Patient, c *Consultation) error {
		c.Status = StatusRecording
		return nil
	}); err != nil {
		return Consultation{}, err
	}

	text, scripted, err := speech.Transcribe(ctx, s.input)
	if err != nil {
		_, _ = s.update(sessionID, patientID, func(_ patient.Patient, c *Consultation) error {
			c.Status = StatusReady
			return nil
		})
		return Consultation{}, fmt.Errorf("failed to record consultation: %w", err)
	}
	if scripted {
		s.log.WithField("patient_id", patientID).Info("Speech input unavailable, using scripted transcript")
	}
	return s.process(sessionID, patientID, text, scripted)
}

// Process runs EMR extraction over a transcript typed or pasted by the
// consultant.
func (s *Service) Process(sessionID, patientID, transcript string) (Consultation, error) {
	if strings.TrimSpace(transcript) == "" {
		return Consultation{}, ErrNoTranscript
	}
	return s.process(sessionID, patientID, transcript, false)
}

func (s *Service) process(sessionID, patientID, transcript string, scripted bool) (Consultation, error) {
	now := s.now()
	return s.update(sessionID, patientID, func(p patient.Patient, c *Consultation) error {
		c.Status = StatusReview
		c.Transcript = transcript
		c.Scripted = scripted
		c.EMR = ExtractEMR(transcript)
		c.DischargeDraft = DischargeDraft(p.Name, transcript, now)
		c.Summary = processedSummary
		c.Medications = append(c.Medications, AutoMedications(transcript)...)
		return nil
	})
}

func (s *Service) AddMedication(sessionID, patientID string, m Medication) (Consultation, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Dosage = strings.TrimSpace(m.Dosage)
	m.Frequency = strings.TrimSpace(m.Frequency)
	if m.Name == "" || m.Dosage == "" {
		return Consultation{}, ErrIncompleteMedication
	}
	return s.update(sessionID, patientID, func(_ patient.Patient, c *Consultation) error {
		c.Medications = append(c.Medications, m)
		return nil
	})
}

func (s *Service) RemoveMedication(sessionID, patientID string, index int) (Consultation, error) {
	return s.update(sessionID, patientID, func(_ patient.Patient, c *Consultation) error {
		if index < 0 || index >= len(c.Medications) {
			return ErrMedicationIndex
		}
		c.Medications = append(c.Medications[:index], c.Medications[index+1:]...)
		return nil
	})
}

// SmartSuggest appends the department's starter prescription.
func (s *Service) SmartSuggest(sessionID, patientID string) (Consultation, error) {
	return s.update(sessionID, patientID, func(p patient.Patient, c *Consultation) error {
		c.Medications = append(c.Medications, Suggestions(p.SuggestedDepartment)...)
		return nil
	})
}

// Report renders the consultation report and archives a copy.
func (s *Service) Report(ctx context.Context, sessionID, patientID string) (filename, body string, err error) {
	p, err := s.patients.Get(patientID)
	if err != nil {
		return "", "", fmt.Errorf("failed to build report: %w", err)
	}
	c, err := s.Open(sessionID, patientID)
	if err != nil {
		return "", "", err
	}

	now := s.now()
	body = Report(p, c, now)
	key := fmt.Sprintf("consultations/%s/%d.txt", p.ID, now.Unix())
	if err := s.archiver.Put(ctx, key, []byte(body), "text/plain; charset=utf-8"); err != nil {
		s.log.WithError(err).WithField("patient_id", p.ID).Warn("Failed to archive consultation report")
	}
	return ReportFilename(p), body, nil
}

// SharePrescription returns a deep link carrying the e-prescription.
func (s *Service) SharePrescription(sessionID, patientID string) (string, error) {
	p, err := s.patients.Get(patientID)
	if err != nil {
		return "", fmt.Errorf("failed to share prescription: %w", err)
	}
	c, err := s.Open(sessionID, patientID)
	if err != nil {
		return "", err
	}
	return s.messenger.ShareLink(Prescription(p, c, s.now())), nil
}

// Forget drops the session's consultation.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, sessionID)
}
