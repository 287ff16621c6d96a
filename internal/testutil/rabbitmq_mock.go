package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/samber/lo"
)

// PublishedEvent is one message captured by MockPublisher.
type PublishedEvent struct {
	RoutingKey string
	EventData  interface{}
	RawJSON    []byte
}

// MockPublisher records published events in memory.
type MockPublisher struct {
	mu     sync.RWMutex
	events []PublishedEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish marshals eventData like the broker publisher would, so events
// that cannot be encoded fail here too.
func (m *MockPublisher) Publish(_ context.Context, routingKey string, eventData interface{}) error {
	raw, err := json.Marshal(eventData)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{RoutingKey: routingKey, EventData: eventData, RawJSON: raw})
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Events returns a copy of the captured events, optionally restricted to
// one routing key.
func (m *MockPublisher) Events(routingKey ...string) []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(routingKey) == 0 {
		return append([]PublishedEvent(nil), m.events...)
	}
	return lo.Filter(m.events, func(e PublishedEvent, _ int) bool {
		return lo.Contains(routingKey, e.RoutingKey)
	})
}

func (m *MockPublisher) GetEventCount() int {
	return len(m.Events())
}

func (m *MockPublisher) GetEventCountByKey(routingKey string) int {
	return len(m.Events(routingKey))
}

func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *MockPublisher) AssertEventPublished(t *testing.T, routingKey string) {
	t.Helper()
	if m.GetEventCountByKey(routingKey) == 0 {
		t.Errorf("expected a %q event, found none", routingKey)
	}
}

func (m *MockPublisher) AssertEventCount(t *testing.T, routingKey string, expected int) {
	t.Helper()
	if got := m.GetEventCountByKey(routingKey); got != expected {
		t.Errorf("expected %d %q events, got %d", expected, routingKey, got)
	}
}
