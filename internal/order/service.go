package order

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
	"github.com/MedFlow-Health/operations-service/internal/notification"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

var (
	ErrNoItems = errors.New("at least one item must be selected")
)

// PatientLookup resolves the patient an order is placed for.
type PatientLookup interface {
	Get(id string) (patient.Patient, error)
}

type Notifier interface {
	Push(title string, kind notification.Kind) notification.Notification
	SetLastUpdate(text string)
}

type MetricsRecorder interface {
	RecordOrderPlaced(ctx context.Context, priority string, items int)
}

// Service is the order registry, most recent first.
type Service struct {
	mu        sync.RWMutex
	orders    []Order
	patients  PatientLookup
	notifier  Notifier
	publisher messaging.PublisherInterface
	metrics   MetricsRecorder
	now       func() time.Time
	log       logrus.FieldLogger
}

func NewService(patients PatientLookup, notifier Notifier, publisher messaging.PublisherInterface, log logrus.FieldLogger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		patients:  patients,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
		log:       log,
	}
}

func (s *Service) SetMetrics(m MetricsRecorder) { s.metrics = m }

// PlaceOrder records a pending order. Emergency patients get Urgent priority.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest, doctorName string) (Order, error) {
	items := lo.Uniq(lo.FilterMap(req.Items, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	}))
	if len(items) == 0 {
		return Order{}, ErrNoItems
	}

	p, err := s.patients.Get(req.PatientID)
	if err != nil {
		return Order{}, fmt.Errorf("failed to place order: %w", err)
	}

	now := s.now()
	o := Order{
		ID:          fmt.Sprintf("ORD-%d", now.UnixMilli()),
		PatientID:   p.ID,
		PatientName: p.Name,
		DoctorName:  doctorName,
		Items:       items,
		Status:      StatusPending,
		Priority:    PriorityRoutine,
		Timestamp:   now,
	}
	if p.Severity == patient.SeverityEmergency {
		o.Priority = PriorityUrgent
	}

	s.mu.Lock()
	s.orders = append([]Order{o}, s.orders...)
	s.mu.Unlock()

	s.notifier.Push(fmt.Sprintf("Order Placed: %d items for %s", len(items), p.Name), notification.KindInfo)
	s.notifier.SetLastUpdate("New Order for " + p.Name)

	event := messaging.OrderPlacedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventOrderPlaced),
		Data: messaging.OrderPlacedData{
			OrderID:   o.ID,
			PatientID: o.PatientID,
			Items:     o.Items,
			Priority:  string(o.Priority),
			PlacedBy:  doctorName,
			PlacedAt:  now.UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventOrderPlaced, event); err != nil {
		s.log.WithError(err).Warn("Failed to publish order event")
	}
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, string(o.Priority), len(items))
	}

	s.log.WithFields(logrus.Fields{"order_id": o.ID, "patient_id": o.PatientID, "priority": o.Priority}).Info("Order placed")
	return cloneOrder(o), nil
}

// List returns orders, optionally for one patient.
func (s *Service) List(patientID string) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		if patientID == "" || o.PatientID == patientID {
			out = append(out, cloneOrder(o))
		}
	}
	return out
}

func cloneOrder(o Order) Order {
	o.Items = append([]string(nil), o.Items...)
	return o
}
