package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/order"
	"github.com/MedFlow-Health/operations-service/internal/patient"
	"github.com/MedFlow-Health/operations-service/internal/speech"
	"github.com/MedFlow-Health/operations-service/internal/testutil"
)

var testNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

type fakePatients struct {
	all []patient.Patient
}

func (f fakePatients) List(patient.ListFilter) []patient.Patient { return f.all }

func (f fakePatients) Get(id string) (patient.Patient, error) {
	for _, p := range f.all {
		if p.ID == id {
			return p, nil
		}
	}
	return patient.Patient{}, patient.ErrPatientNotFound
}

func (f fakePatients) Stats() patient.Stats { return patient.Stats{Total: len(f.all)} }

type fakeOrders []order.Order

func (f fakeOrders) List(string) []order.Order { return f }

type outputSpy struct {
	spoken    []string
	cancelled int
}

func (o *outputSpy) Speak(_ context.Context, text string) error {
	o.spoken = append(o.spoken, text)
	return nil
}

func (o *outputSpy) Cancel() error {
	o.cancelled++
	return nil
}

type mailSpy struct {
	messaging.LinkMessenger
	to, body string
	err      error
}

func (m *mailSpy) SendEmail(_ context.Context, to, _ string, body string) error {
	m.to, m.body = to, body
	return m.err
}

func newTestService(out speech.Output) *Service {
	orders := fakeOrders{{ID: "ORD-1", PatientID: "P-1001"}}
	return NewService(fakePatients{all: patient.Seed(testNow)}, orders, speech.NewReader(out), testutil.DiscardLogger())
}

func TestOverview_Columns(t *testing.T) {
	s := newTestService(nil)

	o, err := s.Overview("")
	require.NoError(t, err)

	assert.Equal(t, FilterAll, o.Filter)
	assert.Equal(t, DefaultNotice, o.Notice)
	assert.Equal(t, 6, o.Stats.Total)
	assert.Len(t, o.Waiting, 3)
	assert.Len(t, o.Active, 2)
	assert.Len(t, o.Discharged, 1)
	assert.Len(t, o.Admitted, 1)
	assert.Len(t, o.Orders, 1)

	ids := []string{}
	for _, p := range o.FollowUps {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"P-1003", "P-1005"}, ids)
}

func TestOverview_StatusFilter(t *testing.T) {
	s := newTestService(nil)

	o, err := s.Overview("Seen")
	require.NoError(t, err)
	assert.Empty(t, o.Waiting)
	require.Len(t, o.Active, 1)
	assert.Equal(t, "P-1003", o.Active[0].ID)
	assert.Empty(t, o.Discharged)
	assert.Len(t, o.FollowUps, 2)

	_, err = s.Overview("everything")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestSetNotice(t *testing.T) {
	s := newTestService(nil)
	assert.Equal(t, "ICU at capacity", s.SetNotice("  ICU at capacity "))

	o, err := s.Overview("")
	require.NoError(t, err)
	assert.Equal(t, "ICU at capacity", o.Notice)
}

func TestMessages(t *testing.T) {
	seed := patient.Seed(testNow)

	assert.Equal(t,
		"Hello Rajesh Kumar, this is MedFlow AI. Your recent check-up summary: "+seed[0].AISummary+" Please follow the prescribed protocol.",
		SummaryMessage(seed[0]))

	msg, err := ReminderMessage(seed[2])
	require.NoError(t, err)
	assert.Equal(t, "Hello Priya Patel, this is a reminder for your upcoming follow-up appointment on 3/12/2026. Please confirm your availability.", msg)

	_, err = ReminderMessage(seed[0])
	assert.ErrorIs(t, err, ErrNoFollowUp)
}

func TestShareLinks(t *testing.T) {
	s := newTestService(nil)

	link, err := s.ShareSummaryLink("P-1001")
	require.NoError(t, err)
	text, err := url.QueryUnescape(strings.TrimPrefix(link, messaging.WhatsAppBase))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Hello Rajesh Kumar, this is MedFlow AI."))

	_, err = s.ReminderLink("P-1001")
	assert.ErrorIs(t, err, ErrNoFollowUp)

	_, err = s.ShareSummaryLink("P-404")
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)
}

func TestEmailReminder(t *testing.T) {
	s := newTestService(nil)
	assert.ErrorIs(t, s.EmailReminder(context.Background(), "P-1003", "priya@example.com"), messaging.ErrEmailDisabled)

	spy := &mailSpy{}
	s.SetMessenger(spy)
	require.NoError(t, s.EmailReminder(context.Background(), "P-1003", "priya@example.com"))
	assert.Equal(t, "priya@example.com", spy.to)
	assert.Contains(t, spy.body, "follow-up appointment on 3/12/2026")

	assert.ErrorIs(t, s.EmailReminder(context.Background(), "P-1003", " "), ErrNoRecipient)

	spy.err = errors.New("relay down")
	assert.Error(t, s.EmailReminder(context.Background(), "P-1003", "priya@example.com"))
}

func TestToggleSpeech(t *testing.T) {
	out := &outputSpy{}
	s := newTestService(out)

	speaking, err := s.ToggleSpeech(context.Background(), "sid", "P-1002")
	require.NoError(t, err)
	assert.True(t, speaking)
	require.Len(t, out.spoken, 1)
	assert.Contains(t, out.spoken[0], "Patient (Age: 72)")

	speaking, err = s.ToggleSpeech(context.Background(), "sid", "P-1002")
	require.NoError(t, err)
	assert.False(t, speaking)
	assert.Equal(t, 1, out.cancelled)

	_, err = s.ToggleSpeech(context.Background(), "sid", "P-1002")
	require.NoError(t, err)
	require.NoError(t, s.StopSpeech("sid"))
	assert.Equal(t, 2, out.cancelled)
}

func TestHandler_Overview(t *testing.T) {
	h := NewHandler(newTestService(nil))

	rr := httptest.NewRecorder()
	h.Overview(rr, httptest.NewRequest(http.MethodGet, "/dashboard?status=waiting", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"filter":"waiting"`)

	rr = httptest.NewRecorder()
	h.Overview(rr, httptest.NewRequest(http.MethodGet, "/dashboard?status=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_ReminderWithoutFollowUp(t *testing.T) {
	h := NewHandler(newTestService(nil))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/dashboard/patients/P-1001/reminder", nil), map[string]string{"id": "P-1001"})
	rr := httptest.NewRecorder()
	h.Reminder(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandler_EmailDisabled(t *testing.T) {
	h := NewHandler(newTestService(nil))

	req := httptest.NewRequest(http.MethodPost, "/dashboard/patients/P-1003/reminder/email", strings.NewReader(`{"email":"priya@example.com"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "P-1003"})
	rr := httptest.NewRecorder()
	h.EmailReminder(rr, req)
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
}
