package patient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/notification"
	"github.com/MedFlow-Health/operations-service/internal/testutil"
)

var fixedNow = time.Date(2024, 10, 24, 9, 30, 0, 0, time.UTC)

// seqRand returns the queued values in order, wrapping around.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

type stubArchiver struct {
	keys   []string
	bodies []string
	err    error
}

func (a *stubArchiver) Put(_ context.Context, key string, body []byte, _ string) error {
	a.keys = append(a.keys, key)
	a.bodies = append(a.bodies, string(body))
	return a.err
}

type fixture struct {
	svc       *Service
	feed      *notification.Feed
	publisher *testutil.MockPublisher
	archiver  *stubArchiver
}

func newFixture(t *testing.T, seed []Patient, rng ...int) fixture {
	t.Helper()
	if len(rng) == 0 {
		rng = []int{0}
	}
	f := fixture{
		feed:      notification.NewEmptyFeed(),
		publisher: testutil.NewMockPublisher(),
		archiver:  &stubArchiver{},
	}
	f.svc = NewService(NewMemoryStore(seed), f.feed,
		WithRand(&seqRand{vals: rng}),
		WithClock(func() time.Time { return fixedNow }),
		WithPublisher(f.publisher),
		WithArchiver(f.archiver),
		WithLogger(testutil.DiscardLogger()),
	)
	return f
}

func waitingPatient(id, name string) Patient {
	return Patient{
		ID:                  id,
		Name:                name,
		Age:                 40,
		Complaints:          []Complaint{{Symptom: "Back pain", Duration: 2, Unit: UnitDays}},
		Severity:            SeverityHigh,
		SuggestedDepartment: "General",
		AISummary:           "Patient (Age: 40) presents with Back pain. AI analysis suggests General referral. Monitor vitals closely.",
		Notes:               []string{"old note"},
		Status:              StatusWaiting,
		AdmittedDate:        fixedNow.Add(-time.Hour),
	}
}

func TestRegister_InfersSeverityAndDepartment(t *testing.T) {
	f := newFixture(t, nil, 0, 1234)

	p, err := f.svc.Register(context.Background(), RegisterRequest{
		Name:      "  Vikram Rao ",
		Age:       54,
		Symptom:   "Severe chest pain",
		Duration:  2,
		Unit:      UnitHours,
		Allergies: []string{" Penicillin", "penicillin", "", "Latex"},
	})
	require.NoError(t, err)

	assert.Equal(t, "P-1234", p.ID)
	assert.Equal(t, "Vikram Rao", p.Name)
	assert.Equal(t, SeverityEmergency, p.Severity)
	assert.Equal(t, "Cardiology", p.SuggestedDepartment)
	assert.Equal(t, StatusWaiting, p.Status)
	assert.Equal(t, "Male", p.Gender)
	assert.Equal(t, []string{"Penicillin", "Latex"}, p.Allergies)
	assert.Equal(t, "Patient (Age: 54) presents with Severe chest pain. AI analysis suggests Cardiology referral. Needs immediate attention.", p.AISummary)
	assert.Empty(t, p.Notes)

	items := f.feed.List()
	require.Len(t, items, 1)
	assert.Equal(t, "New Admission: Vikram Rao", items[0].Title)
	assert.Equal(t, notification.KindSuccess, items[0].Type)
	assert.Equal(t, "New patient registered: Vikram Rao", f.feed.LastUpdate())

	f.publisher.AssertEventCount(t, messaging.EventPatientRegistered, 1)
}

func TestRegister_Defaults(t *testing.T) {
	f := newFixture(t, nil)

	p, err := f.svc.Register(context.Background(), RegisterRequest{Name: "Meena", Age: 30, Symptom: "Rash"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Complaints[0].Duration)
	assert.Equal(t, UnitHours, p.Complaints[0].Unit)
	assert.Equal(t, SeverityMedium, p.Severity)
	assert.Equal(t, "General", p.SuggestedDepartment)
	assert.NotNil(t, p.Allergies)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"missing name", RegisterRequest{Age: 30, Symptom: "Cough"}, "name"},
		{"blank name", RegisterRequest{Name: "   ", Age: 30, Symptom: "Cough"}, "name"},
		{"zero age", RegisterRequest{Name: "A", Symptom: "Cough"}, "age"},
		{"missing symptom", RegisterRequest{Name: "A", Age: 30}, "symptom"},
		{"bad unit", RegisterRequest{Name: "A", Age: 30, Symptom: "Cough", Unit: "Months"}, "unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := f.svc.Register(context.Background(), tt.req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, f.svc.Store().Len())
			assert.Zero(t, f.feed.Len())
		})
	}
}

func TestRegister_RetriesOnIDCollision(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-7", "Existing")}, 0, 7, 8)

	p, err := f.svc.Register(context.Background(), RegisterRequest{Name: "New", Age: 20, Symptom: "Cough"})
	require.NoError(t, err)
	assert.Equal(t, "P-8", p.ID)
	assert.Equal(t, 2, f.svc.Store().Len())
}

func TestAdd_ForcesWaiting(t *testing.T) {
	f := newFixture(t, nil)

	imported := waitingPatient("P-55555", "Sanya Iyer")
	imported.Status = StatusAdmitted
	p, err := f.svc.Add(context.Background(), imported)
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, p.Status)
	assert.Equal(t, "P-55555", p.ID)
	assert.Equal(t, "New Admission: Sanya Iyer", f.feed.List()[0].Title)

	_, err = f.svc.Add(context.Background(), imported)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestMarkSeen(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "Rajesh Kumar")})

	p, err := f.svc.MarkSeen(context.Background(), "P-1", "doctor@medflow.ai")
	require.NoError(t, err)
	assert.Equal(t, StatusSeen, p.Status)
	assert.Equal(t, "Status: Rajesh Kumar is being seen", f.feed.List()[0].Title)
	assert.Equal(t, "Rajesh Kumar marked as SEEN", f.feed.LastUpdate())
	f.publisher.AssertEventCount(t, messaging.EventPatientStatusChanged, 1)

	_, err = f.svc.MarkSeen(context.Background(), "P-1", "doctor@medflow.ai")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.MarkSeen(context.Background(), "P-404", "doctor@medflow.ai")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestAdmit(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "Rajesh Kumar")})

	p, err := f.svc.Admit(context.Background(), "P-1", AdmissionRequest{WardID: "icu", BedID: "ICU-02"}, "doctor@medflow.ai")
	require.NoError(t, err)

	assert.Equal(t, StatusAdmitted, p.Status)
	assert.Equal(t, "ICU", p.Ward)
	assert.Equal(t, "ICU-02", p.Room)
	assert.Equal(t, "Admitted", p.Condition)
	assert.Equal(t, []string{
		"Admitted to ICU Bed ICU-02",
		"Vitals: BP 120/80, HR 72",
		"Diagnosis: Patient (Age: 40) presents with Back pain",
		"old note",
	}, p.Notes)
	assert.Equal(t, "Rajesh Kumar ADMITTED to ICU", f.feed.LastUpdate())

	for _, w := range f.svc.Wards() {
		for _, b := range w.Beds {
			if b.ID == "ICU-02" {
				assert.True(t, b.Occupied)
				assert.Equal(t, "P-1", b.PatientID)
			}
		}
	}
}

func TestAdmit_NoteKeepsThreeNotes(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "Rajesh Kumar")})

	p, err := f.svc.Admit(context.Background(), "P-1", AdmissionRequest{
		WardID:    "icu",
		BedID:     "ICU-02",
		Diagnosis: "Unstable angina",
		Note:      "handover to night team",
	}, "doctor@medflow.ai")
	require.NoError(t, err)

	require.Len(t, p.Notes, 4)
	assert.Equal(t, "Diagnosis: Unstable angina | Note: handover to night team", p.Notes[2])
	assert.Equal(t, "old note", p.Notes[3])
}

func TestRegister_ConcurrentWithDefaultRand(t *testing.T) {
	svc := NewService(NewMemoryStore(nil), notification.NewEmptyFeed(),
		WithPublisher(testutil.NewMockPublisher()),
		WithLogger(testutil.DiscardLogger()),
	)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), RegisterRequest{Name: "Walk In", Age: 30, Symptom: "Fever"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, workers, svc.Store().Len())
}

func TestAdmit_Errors(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "A"), waitingPatient("P-2", "B")})
	ctx := context.Background()

	_, err := f.svc.Admit(ctx, "P-1", AdmissionRequest{WardID: "icu"}, "x")
	assert.ErrorIs(t, err, ErrNoBedSelected)

	_, err = f.svc.Admit(ctx, "P-1", AdmissionRequest{WardID: "cardiac", BedID: "C-01"}, "x")
	assert.ErrorIs(t, err, ErrUnknownWard)

	_, err = f.svc.Admit(ctx, "P-1", AdmissionRequest{WardID: "icu", BedID: "ICU-01"}, "x")
	assert.ErrorIs(t, err, ErrBedUnavailable)

	_, err = f.svc.Admit(ctx, "P-1", AdmissionRequest{WardID: "icu", BedID: "ICU-05"}, "x")
	require.NoError(t, err)

	_, err = f.svc.Admit(ctx, "P-2", AdmissionRequest{WardID: "icu", BedID: "ICU-05"}, "x")
	assert.ErrorIs(t, err, ErrBedUnavailable)

	p, _ := f.svc.Get("P-2")
	assert.Equal(t, StatusWaiting, p.Status)
	assert.Equal(t, []string{"old note"}, p.Notes)
}

func TestDischarge(t *testing.T) {
	seen := waitingPatient("P-1", "Priya Patel")
	seen.Status = StatusSeen
	f := newFixture(t, []Patient{seen})

	draft, err := f.svc.DischargeDraft("P-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(draft.Summary, "Patient admitted on 10/24/2024. \nDiagnosis: Patient (Age: 40) presents with Back pain."))
	assert.Contains(t, draft.Medications, "Tab Pantoprazole 40mg OD")

	p, err := f.svc.Discharge(context.Background(), "P-1", draft, "doctor@medflow.ai")
	require.NoError(t, err)

	assert.Equal(t, StatusDischarged, p.Status)
	require.NotNil(t, p.DischargeReport)
	assert.Equal(t, fixedNow, p.DischargeReport.Date)
	assert.Equal(t, []string{"Discharged with summary.", "old note"}, p.Notes)
	assert.Equal(t, "Discharge: Priya Patel", f.feed.List()[0].Title)
	assert.Equal(t, "Priya Patel DISCHARGED", f.feed.LastUpdate())

	require.Equal(t, []string{"discharge-summaries/P-1.txt"}, f.archiver.keys)
	assert.Contains(t, f.archiver.bodies[0], "Patient: Priya Patel (ID: P-1)")

	_, err = f.svc.Discharge(context.Background(), "P-1", draft, "doctor@medflow.ai")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	after, _ := f.svc.Get("P-1")
	assert.Len(t, after.Notes, 2)
}

func TestDischarge_FromWaitingRejected(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "A")})

	_, err := f.svc.Discharge(context.Background(), "P-1", DischargeForm{}, "x")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.archiver.keys)
}

func TestDischarge_ArchiveFailureIsNotFatal(t *testing.T) {
	seen := waitingPatient("P-1", "A")
	seen.Status = StatusSeen
	f := newFixture(t, []Patient{seen})
	f.archiver.err = errors.New("bucket unavailable")

	p, err := f.svc.Discharge(context.Background(), "P-1", DischargeForm{Summary: "ok"}, "x")
	require.NoError(t, err)
	assert.Equal(t, StatusDischarged, p.Status)
}

func TestSetSeverity(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "Arjun Singh")})

	_, err := f.svc.SetSeverity(context.Background(), "P-1", SeverityEmergency, "x")
	require.NoError(t, err)
	assert.Equal(t, "Alert: Arjun Singh is now EMERGENCY", f.feed.List()[0].Title)
	assert.Equal(t, notification.KindAlert, f.feed.List()[0].Type)

	_, err = f.svc.SetSeverity(context.Background(), "P-1", SeverityEmergency, "x")
	require.NoError(t, err)
	assert.Equal(t, 1, f.feed.Len())

	_, err = f.svc.SetSeverity(context.Background(), "P-1", "catastrophic", "x")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestActivateCardiacEmergency(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "Rajesh Kumar")})

	p, err := f.svc.ActivateCardiacEmergency(context.Background(), "P-1", "doctor@medflow.ai")
	require.NoError(t, err)

	assert.Equal(t, SeverityEmergency, p.Severity)
	assert.Equal(t, StatusAdmitted, p.Status)
	assert.Equal(t, "VOICE COMMAND: Cardiac Emergency Protocol Activated", p.Notes[0])

	titles := []string{}
	for _, n := range f.feed.List() {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{
		"CRITICAL: Cardiac Bed Reserved (ICU-01) for Rajesh Kumar",
		"Orders Placed: ECG + Troponin I + CXR",
		"Team Alerted: Dr. Chen, Dr. Ross",
	}, titles)
}

func TestActivateCardiacEmergency_SecondPatientGetsFreeICUBed(t *testing.T) {
	f := newFixture(t, []Patient{waitingPatient("P-1", "Rajesh Kumar"), waitingPatient("P-2", "Arjun Singh")})
	ctx := context.Background()

	first, err := f.svc.ActivateCardiacEmergency(ctx, "P-1", "doctor@medflow.ai")
	require.NoError(t, err)
	assert.Equal(t, "ICU-01", first.Room)

	second, err := f.svc.ActivateCardiacEmergency(ctx, "P-2", "doctor@medflow.ai")
	require.NoError(t, err)
	assert.Equal(t, "ICU-02", second.Room)
	assert.Equal(t, "CRITICAL: Cardiac Bed Reserved (ICU-02) for Arjun Singh", f.feed.List()[0].Title)
}

func TestActivateCardiacEmergency_FullICUReusesCardiacBed(t *testing.T) {
	f := newFixture(t, []Patient{
		waitingPatient("P-1", "A"), waitingPatient("P-2", "B"), waitingPatient("P-3", "C"),
		waitingPatient("P-4", "D"), waitingPatient("P-5", "E"),
	})
	ctx := context.Background()
	for id, bed := range map[string]string{"P-1": "ICU-02", "P-2": "ICU-05", "P-3": "ICU-07"} {
		_, err := f.svc.Admit(ctx, id, AdmissionRequest{WardID: "icu", BedID: bed}, "x")
		require.NoError(t, err)
	}
	_, err := f.svc.ActivateCardiacEmergency(ctx, "P-4", "x")
	require.NoError(t, err)

	p, err := f.svc.ActivateCardiacEmergency(ctx, "P-5", "x")
	require.NoError(t, err)
	assert.Equal(t, "ICU-01", p.Room)
}

func TestListAndStats(t *testing.T) {
	f := newFixture(t, Seed(fixedNow))

	stats := f.svc.Stats()
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.Critical)
	assert.Equal(t, 3, stats.Waiting)

	assert.Len(t, f.svc.List(ListFilter{Status: StatusWaiting}), 3)
	assert.Len(t, f.svc.List(ListFilter{Status: "active"}), 2)
	assert.Len(t, f.svc.List(ListFilter{Search: "sharma"}), 1)
	assert.Len(t, f.svc.List(ListFilter{Department: "general"}), 2)
}

func TestAssessment(t *testing.T) {
	f := newFixture(t, Seed(fixedNow))

	a, err := f.svc.Assessment("P-1001")
	require.NoError(t, err)
	assert.Equal(t, "ACS / Chest Pain Protocol", a.Protocol)
	assert.Contains(t, a.ClinicalReasoning, "of 2 Hours duration")
	assert.Contains(t, a.ClinicalReasoning, "age (58y)")
	assert.Contains(t, a.ClinicalReasoning, "underlying cardiology issues")
	require.Len(t, a.Recommendations, 4)
	assert.Equal(t, "Initiate 'ACS / Chest Pain Protocol' workflow immediately.", a.Recommendations[0])
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusSeen))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusAdmitted))
	assert.False(t, StatusWaiting.CanTransitionTo(StatusDischarged))
	assert.True(t, StatusSeen.CanTransitionTo(StatusDischarged))
	assert.False(t, StatusAdmitted.CanTransitionTo(StatusSeen))
	assert.True(t, StatusDischarged.Terminal())
	assert.False(t, StatusDischarged.CanTransitionTo(StatusWaiting))
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore([]Patient{waitingPatient("P-1", "A")})

	p, err := store.Get("P-1")
	require.NoError(t, err)
	p.Notes[0] = "mutated"

	again, _ := store.Get("P-1")
	assert.Equal(t, "old note", again.Notes[0])
}
