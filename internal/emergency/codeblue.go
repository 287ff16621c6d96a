// Package emergency runs the hospital-wide Code Blue broadcast.
package emergency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MedFlow-Health/operations-service/internal/messaging"
	"github.com/MedFlow-Health/operations-service/internal/notification"
)

// Resolutions offered on the alert overlay.
const (
	ResolutionFalseAlarm  = "false_alarm"
	ResolutionTeamArrived = "team_arrived"
)

// DefaultLocation is used when the trigger names no bed.
const DefaultLocation = "General"

var (
	ErrNotActive         = errors.New("no code blue is active")
	ErrUnknownResolution = errors.New("resolution must be false_alarm or team_arrived")
)

// Alert is the state of the broadcast. Elapsed drives the crash timer.
type Alert struct {
	Active         bool      `json:"active"`
	Location       string    `json:"location,omitempty"`
	TriggeredBy    string    `json:"triggeredBy,omitempty"`
	StartedAt      time.Time `json:"startedAt,omitempty"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	Timer          string    `json:"timer"`
}

type Notifier interface {
	Push(title string, kind notification.Kind) notification.Notification
	SetLastUpdate(s string)
}

type MetricsRecorder interface {
	RecordCodeBlue(ctx context.Context, action string)
}

type Board struct {
	mu    sync.Mutex
	alert Alert

	notifier  Notifier
	publisher messaging.PublisherInterface
	log       logrus.FieldLogger
	metrics   MetricsRecorder
	now       func() time.Time
}

func NewBoard(notifier Notifier, publisher messaging.PublisherInterface, log logrus.FieldLogger) *Board {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Board{notifier: notifier, publisher: publisher, log: log, now: time.Now}
}

func (b *Board) SetMetrics(m MetricsRecorder) { b.metrics = m }

func (b *Board) SetClock(now func() time.Time) { b.now = now }

// Activate raises the alert. Raising it again while active keeps the
// original start time and location.
func (b *Board) Activate(ctx context.Context, location, triggeredBy string) Alert {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultLocation
	}

	b.mu.Lock()
	if b.alert.Active {
		a := b.snapshot()
		b.mu.Unlock()
		return a
	}
	b.alert = Alert{Active: true, Location: location, TriggeredBy: triggeredBy, StartedAt: b.now()}
	a := b.snapshot()
	b.mu.Unlock()

	b.notifier.Push("CODE BLUE ALERT: "+location+". Emergency Broadcast has been sent to all available units.", notification.KindAlert)
	b.notifier.SetLastUpdate("Code Blue at " + location)
	b.publish(ctx, messaging.EventCodeBlueActivated, messaging.CodeBlueData{
		Location:    location,
		TriggeredBy: triggeredBy,
		At:          a.StartedAt,
	})
	b.record(ctx, "activated")
	b.log.WithFields(logrus.Fields{"location": location, "triggered_by": triggeredBy}).Warn("Code Blue activated")
	return a
}

// Resolve clears the alert and reports how long it ran.
func (b *Board) Resolve(ctx context.Context, resolution, actor string) (Alert, error) {
	if resolution != ResolutionFalseAlarm && resolution != ResolutionTeamArrived {
		return Alert{}, ErrUnknownResolution
	}

	b.mu.Lock()
	if !b.alert.Active {
		b.mu.Unlock()
		return Alert{}, ErrNotActive
	}
	final := b.snapshot()
	b.alert = Alert{}
	b.mu.Unlock()

	label := "Team Arrived"
	kind := notification.KindSuccess
	if resolution == ResolutionFalseAlarm {
		label = "False Alarm"
		kind = notification.KindInfo
	}
	b.notifier.Push(fmt.Sprintf("Code Blue Resolved (%s): %s after %s", final.Location, label, final.Timer), kind)
	b.publish(ctx, messaging.EventCodeBlueResolved, messaging.CodeBlueData{
		Location:       final.Location,
		TriggeredBy:    actor,
		Resolution:     resolution,
		ElapsedSeconds: final.ElapsedSeconds,
		At:             b.now(),
	})
	b.record(ctx, resolution)
	b.log.WithFields(logrus.Fields{"location": final.Location, "resolution": resolution, "elapsed_s": final.ElapsedSeconds}).Info("Code Blue resolved")

	final.Active = false
	return final, nil
}

// Status returns the alert with the crash timer as of now.
func (b *Board) Status() Alert {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// snapshot must be called with b.mu held.
func (b *Board) snapshot() Alert {
	a := b.alert
	if a.Active {
		a.ElapsedSeconds = int(b.now().Sub(a.StartedAt).Seconds())
	}
	a.Timer = FormatTimer(a.ElapsedSeconds)
	return a
}

// FormatTimer renders seconds as HH:MM:SS.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

func (b *Board) publish(ctx context.Context, key string, data messaging.CodeBlueData) {
	event := messaging.CodeBlueEvent{BaseEvent: messaging.NewBaseEvent(key), Data: data}
	if err := b.publisher.Publish(ctx, key, event); err != nil {
		b.log.WithError(err).WithField("event", key).Warn("failed to publish code blue event")
	}
}

func (b *Board) record(ctx context.Context, action string) {
	if b.metrics != nil {
		b.metrics.RecordCodeBlue(ctx, action)
	}
}
