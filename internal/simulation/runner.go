package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MetricsRecorder interface for recording simulator activity
type MetricsRecorder interface {
	RecordSimulationTick(ctx context.Context, kind string)
}

// Runner drives a Ticker on an interval. Start and Stop are idempotent;
// Stop waits for the loop to exit.
type Runner struct {
	ticker   *Ticker
	interval time.Duration
	metrics  MetricsRecorder
	log      logrus.FieldLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(ticker *Ticker, interval time.Duration, log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{ticker: ticker, interval: interval, log: log}
}

func (r *Runner) SetMetrics(m MetricsRecorder) { r.metrics = m }

// Start launches the loop unless it is already running.
func (r *Runner) Start(parent context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)
	r.log.WithField("interval", r.interval.String()).Info("Simulation started")
}

// Stop cancels the loop and waits for it to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.log.Info("Simulation stopped")
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			out := r.ticker.Tick(ctx)
			if r.metrics != nil {
				r.metrics.RecordSimulationTick(ctx, string(out.Kind))
			}
			if out.Kind != KindNone {
				r.log.WithFields(logrus.Fields{"kind": out.Kind, "patient_id": out.PatientID}).Debug("Simulation tick")
			}
		}
	}
}
