package simulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/MedFlow-Health/operations-service/internal/notification"
	"github.com/MedFlow-Health/operations-service/internal/patient"
)

// Canned clinical notes the simulator attaches.
var Notes = []string{
	"Vitals Update: BP 125/82, HR 78, SpO2 98%",
	"Lab Results: Electrolytes within normal limits",
	"Nurse Observation: Patient resting comfortably",
	"Radiology: Chest X-Ray completed, awaiting review",
	"Dietary: Patient finished lunch, good appetite",
	"Vitals Alert: Slight tachycardia noted (102 bpm)",
}

const (
	noteThreshold     = 0.4
	severityThreshold = 0.7
	admitThreshold    = 0.6

	simulatedWard = "General Ward A"
	simulatedBed  = "A-04"
	actor         = "simulator"
)

// Rand is the randomness a tick draws from.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Registry is what a tick needs from the patient service.
type Registry interface {
	Store() patient.Store
	PublishStatus(ctx context.Context, p patient.Patient, old patient.Status, actor string)
	PublishSeverity(ctx context.Context, p patient.Patient, old patient.Severity, actor string)
}

type Notifier interface {
	Push(title string, kind notification.Kind) notification.Notification
	SetLastUpdate(text string)
}

// Kind names what a tick did.
type Kind string

const (
	KindNone     Kind = "none"
	KindNote     Kind = "note"
	KindSeverity Kind = "severity"
	KindStatus   Kind = "status"
)

// Outcome describes one tick.
type Outcome struct {
	Kind      Kind
	PatientID string
}

// Ticker applies one random update per Tick.
type Ticker struct {
	registry Registry
	notifier Notifier
	rng      Rand
}

func NewTicker(registry Registry, notifier Notifier, rng Rand) *Ticker {
	return &Ticker{registry: registry, notifier: notifier, rng: rng}
}

type pending struct {
	title      string
	kind       notification.Kind
	lastUpdate string
	oldStatus  patient.Status
	oldSev     patient.Severity
	outcome    Kind
}

// Tick picks one patient and applies a note, a severity change or a status
// step. Discharged patients are left alone.
func (t *Ticker) Tick(ctx context.Context) Outcome {
	var out pending
	p, changed := t.registry.Store().UpdateAt(t.rng.Intn, func(p *patient.Patient) bool {
		if p.Status == patient.StatusDischarged {
			return false
		}
		out = t.apply(p)
		return out.outcome != KindNone
	})
	if !changed {
		return Outcome{Kind: KindNone, PatientID: p.ID}
	}

	t.notifier.Push(out.title, out.kind)
	t.notifier.SetLastUpdate(out.lastUpdate)

	switch out.outcome {
	case KindStatus:
		t.registry.PublishStatus(ctx, p, out.oldStatus, actor)
	case KindSeverity:
		t.registry.PublishSeverity(ctx, p, out.oldSev, actor)
	}
	return Outcome{Kind: out.outcome, PatientID: p.ID}
}

func (t *Ticker) apply(p *patient.Patient) pending {
	roll := t.rng.Float64()
	switch {
	case roll < noteThreshold:
		note := Notes[t.rng.Intn(len(Notes))]
		p.PrependNotes(note)
		return pending{
			title:      "Update: " + p.Name,
			kind:       notification.KindInfo,
			lastUpdate: fmt.Sprintf("%s: %s", p.Name, strings.SplitN(note, ":", 2)[0]),
			outcome:    KindNote,
		}

	case roll < severityThreshold:
		next := patient.Severities[t.rng.Intn(len(patient.Severities))]
		if next == p.Severity {
			return pending{outcome: KindNone}
		}
		old := p.Severity
		p.Severity = next
		kind := notification.KindInfo
		if next == patient.SeverityEmergency || next == patient.SeverityHigh {
			kind = notification.KindAlert
		}
		upper := strings.ToUpper(string(next))
		return pending{
			title:      fmt.Sprintf("Alert: %s is now %s", p.Name, upper),
			kind:       kind,
			lastUpdate: fmt.Sprintf("%s priority changed to %s", p.Name, upper),
			oldSev:     old,
			outcome:    KindSeverity,
		}

	default:
		return t.advance(p)
	}
}

func (t *Ticker) advance(p *patient.Patient) pending {
	old := p.Status
	switch p.Status {
	case patient.StatusWaiting:
		if p.MoveTo(patient.StatusSeen) != nil {
			return pending{outcome: KindNone}
		}
		return pending{
			title:      fmt.Sprintf("Status: %s is being seen", p.Name),
			kind:       notification.KindSuccess,
			lastUpdate: p.Name + " marked as SEEN",
			oldStatus:  old,
			outcome:    KindStatus,
		}

	case patient.StatusSeen:
		if t.rng.Float64() > admitThreshold {
			if p.MoveTo(patient.StatusAdmitted) != nil {
				return pending{outcome: KindNone}
			}
			p.Ward = simulatedWard
			p.Room = simulatedBed
			return pending{
				title:      "Admission: " + p.Name,
				kind:       notification.KindSuccess,
				lastUpdate: p.Name + " ADMITTED to Ward A",
				oldStatus:  old,
				outcome:    KindStatus,
			}
		}
		if p.MoveTo(patient.StatusDischarged) != nil {
			return pending{outcome: KindNone}
		}
		return pending{
			title:      "Discharge: " + p.Name,
			kind:       notification.KindSuccess,
			lastUpdate: p.Name + " DISCHARGED",
			oldStatus:  old,
			outcome:    KindStatus,
		}
	}
	return pending{outcome: KindNone}
}
