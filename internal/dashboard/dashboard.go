// Package dashboard builds the landing view: counters, patient columns, the
// follow-up queue and outreach links.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/order"
	"github.com/MedFlow-Health/operations-service/internal/patient"
	"github.com/MedFlow-Health/operations-service/internal/speech"
)

var (
	ErrUnknownFilter = errors.New("unknown status filter")
	ErrNoFollowUp    = errors.New("patient has no follow-up scheduled")
	ErrNoRecipient   = errors.New("recipient email is required")
)

// DefaultNotice is the shift board message a fresh service starts with.
const DefaultNotice = "Shift Handoff: Dr. Verma on call. Bed 4 needs cardio consult."

// FilterAll shows every column unfiltered.
const FilterAll = "all"

type PatientSource interface {
	List(filter patient.ListFilter) []patient.Patient
	Get(id string) (patient.Patient, error)
	Stats() patient.Stats
}

type OrderSource interface {
	List(patientID string) []order.Order
}

type Overview struct {
	Stats      patient.Stats     `json:"stats"`
	Notice     string            `json:"notice"`
	Filter     string            `json:"filter"`
	Waiting    []patient.Patient `json:"waiting"`
	Active     []patient.Patient `json:"active"`
	Discharged []patient.Patient `json:"discharged"`
	FollowUps  []patient.Patient `json:"followUps"`
	Admitted   []patient.Patient `json:"admitted"`
	Orders     []order.Order     `json:"orders"`
}

type Service struct {
	patients  PatientSource
	orders    OrderSource
	messenger messaging.ExternalMessenger
	reader    *speech.Reader
	log       logrus.FieldLogger

	mu     sync.RWMutex
	notice string
}

func NewService(patients PatientSource, orders OrderSource, reader *speech.Reader, log logrus.FieldLogger) *Service {
	if reader == nil {
		reader = speech.NewReader(nil)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		patients:  patients,
		orders:    orders,
		messenger: messaging.LinkMessenger{},
		reader:    reader,
		log:       log,
		notice:    DefaultNotice,
	}
}

func (s *Service) SetMessenger(m messaging.ExternalMessenger) { s.messenger = m }

// Overview assembles the dashboard. A status filter narrows the three
// patient columns; the follow-up and admitted lists ignore it.
func (s *Service) Overview(filter string) (Overview, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		filter = FilterAll
	}
	if filter != FilterAll && !patient.Status(filter).Valid() {
		return Overview{}, fmt.Errorf("%w: %s", ErrUnknownFilter, filter)
	}

	all := s.patients.List(patient.ListFilter{})
	column := func(keep func(p patient.Patient) bool) []patient.Patient {
		return lo.Filter(all, func(p patient.Patient, _ int) bool {
			return keep(p) && (filter == FilterAll || string(p.Status) == filter)
		})
	}

	s.mu.RLock()
	notice := s.notice
	s.mu.RUnlock()

	return Overview{
		Stats:  s.patients.Stats(),
		Notice: notice,
		Filter: filter,
		Waiting: column(func(p patient.Patient) bool {
			return p.Status == patient.StatusWaiting
		}),
		Active: column(func(p patient.Patient) bool {
			return p.Status == patient.StatusSeen || p.Status == patient.StatusAdmitted
		}),
		Discharged: column(func(p patient.Patient) bool {
			return p.Status == patient.StatusDischarged
		}),
		FollowUps: lo.Filter(all, func(p patient.Patient, _ int) bool {
			return p.FollowUp != nil && (p.FollowUp.Status == "scheduled" || p.FollowUp.Status == "missed")
		}),
		Admitted: lo.Filter(all, func(p patient.Patient, _ int) bool {
			return p.Status == patient.StatusAdmitted
		}),
		Orders: s.orders.List(""),
	}, nil
}

func (s *Service) SetNotice(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = strings.TrimSpace(text)
	return s.notice
}

// SummaryMessage is the check-up summary sent to a patient.
func SummaryMessage(p patient.Patient) string {
	return fmt.Sprintf("Hello %s, this is MedFlow AI. Your recent check-up summary: %s Please follow the prescribed protocol.", p.Name, p.AISummary)
}

// ReminderMessage asks a patient to confirm their follow-up.
func ReminderMessage(p patient.Patient) (string, error) {
	if p.FollowUp == nil {
		return "", ErrNoFollowUp
	}
	date := p.FollowUp.Date
	if d, err := time.Parse("2006-01-02", date); err == nil {
		date = d.Format("1/2/2006")
	}
	return fmt.Sprintf("Hello %s, this is a reminder for your upcoming follow-up appointment on %s. Please confirm your availability.", p.Name, date), nil
}

func (s *Service) ShareSummaryLink(patientID string) (string, error) {
	p, err := s.patients.Get(patientID)
	if err != nil {
		return "", fmt.Errorf("failed to share summary: %w", err)
	}
	return s.messenger.ShareLink(SummaryMessage(p)), nil
}

func (s *Service) ReminderLink(patientID string) (string, error) {
	p, err := s.patients.Get(patientID)
	if err != nil {
		return "", fmt.Errorf("failed to build reminder: %w", err)
	}
	msg, err := ReminderMessage(p)
	if err != nil {
		return "", err
	}
	return s.messenger.ShareLink(msg), nil
}

// EmailReminder sends the follow-up reminder by email when outbound mail is
// configured.
func (s *Service) EmailReminder(ctx context.Context, patientID, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}
	p, err := s.patients.Get(patientID)
	if err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	msg, err := ReminderMessage(p)
	if err != nil {
		return err
	}
	if err := s.messenger.SendEmail(ctx, to, "MedFlow follow-up reminder", msg); err != nil {
		return err
	}
	s.log.WithField("patient_id", p.ID).Info("Follow-up reminder emailed")
	return nil
}

// ToggleSpeech reads a patient's summary aloud for the session, or stops
// reading if it already is.
func (s *Service) ToggleSpeech(ctx context.Context, sessionID, patientID string) (bool, error) {
	p, err := s.patients.Get(patientID)
	if err != nil {
		return false, fmt.Errorf("failed to read summary: %w", err)
	}
	return s.reader.Toggle(ctx, sessionID, p.AISummary)
}

// StopSpeech silences the session, as when the patient card is closed.
func (s *Service) StopSpeech(sessionID string) error {
	return s.reader.Stop(sessionID)
}
