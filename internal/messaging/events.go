package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys as constants
const (
	// Patient events
	EventPatientRegistered      = "patient.registered"
	EventPatientStatusChanged   = "patient.status_changed"
	EventPatientSeverityChanged = "patient.severity_changed"
	EventPatientNoteAdded       = "patient.note_added"

	// Order events
	EventOrderPlaced = "order.placed"

	// Emergency events
	EventCodeBlueActivated = "codeblue.activated"
	EventCodeBlueResolved  = "codeblue.resolved"

	// Session events
	EventSessionStarted = "session.started"
	EventSessionEnded   = "session.ended"
)

// ServiceName is stamped on every event.
const ServiceName = "operations-service"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// PatientRegisteredEvent is published for reception intake and document imports.
type PatientRegisteredEvent struct {
	BaseEvent
	Data PatientRegisteredData `json:"data"`
}

type PatientRegisteredData struct {
	PatientID  string    `json:"patient_id"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Severity   string    `json:"severity"`
	Department string    `json:"department"`
	Source     string    `json:"source"` // intake, import
	CreatedAt  time.Time `json:"created_at"`
}

// PatientStatusChangedEvent represents a patient status change event
type PatientStatusChangedEvent struct {
	BaseEvent
	Data PatientStatusChangedData `json:"data"`
}

type PatientStatusChangedData struct {
	PatientID string    `json:"patient_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Ward      string    `json:"ward,omitempty"`
	Bed       string    `json:"bed,omitempty"`
	Actor     string    `json:"actor"` // user email or "simulator"
	ChangedAt time.Time `json:"changed_at"`
}

type PatientSeverityChangedEvent struct {
	BaseEvent
	Data PatientSeverityChangedData `json:"data"`
}

type PatientSeverityChangedData struct {
	PatientID   string    `json:"patient_id"`
	OldSeverity string    `json:"old_severity"`
	NewSeverity string    `json:"new_severity"`
	Actor       string    `json:"actor"`
	ChangedAt   time.Time `json:"changed_at"`
}

type PatientNoteAddedEvent struct {
	BaseEvent
	Data PatientNoteAddedData `json:"data"`
}

type PatientNoteAddedData struct {
	PatientID string    `json:"patient_id"`
	Note      string    `json:"note"`
	AddedAt   time.Time `json:"added_at"`
}

// OrderPlacedEvent carries a lab/imaging order.
type OrderPlacedEvent struct {
	BaseEvent
	Data OrderPlacedData `json:"data"`
}

type OrderPlacedData struct {
	OrderID   string    `json:"order_id"`
	PatientID string    `json:"patient_id"`
	Items     []string  `json:"items"`
	Priority  string    `json:"priority"`
	PlacedBy  string    `json:"placed_by"`
	PlacedAt  time.Time `json:"placed_at"`
}

// CodeBlueEvent is published on activation and on resolution.
type CodeBlueEvent struct {
	BaseEvent
	Data CodeBlueData `json:"data"`
}

type CodeBlueData struct {
	Location       string    `json:"location"`
	TriggeredBy    string    `json:"triggered_by"`
	Resolution     string    `json:"resolution,omitempty"`
	ElapsedSeconds int       `json:"elapsed_seconds,omitempty"`
	At             time.Time `json:"at"`
}

type SessionEvent struct {
	BaseEvent
	Data SessionData `json:"data"`
}

type SessionData struct {
	SessionID string    `json:"session_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	At        time.Time `json:"at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: ServiceName,
	}
}
