// Package speech abstracts speech recognition and synthesis. The service
// has no microphone or speaker of its own, so the defaults fall back to a
// scripted transcript and silent playback.
package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnsupported means no recogniser is available.
var ErrUnsupported = errors.New("speech recognition not supported")

// DefaultScript is dictated when recognition is unavailable.
const DefaultScript = "Patient reports vomiting for 2 days. No fever. BP is 120 over 80. Diagnosis is likely viral gastroenteritis. Prescribe Ondansetron 4mg."

// Input streams recognised text fragments until ctx ends or the speaker stops.
type Input interface {
	Listen(ctx context.Context) (<-chan string, error)
}

// Output speaks text aloud.
type Output interface {
	Speak(ctx context.Context, text string) error
	Cancel() error
}

// UnsupportedInput is the default recogniser.
type UnsupportedInput struct{}

func (UnsupportedInput) Listen(context.Context) (<-chan string, error) {
	return nil, ErrUnsupported
}

// ScriptedInput plays back a fixed transcript after Delay.
type ScriptedInput struct {
	Script string
	Delay  time.Duration
}

func (s ScriptedInput) Listen(ctx context.Context) (<-chan string, error) {
	out := make(chan string, 1)
	go func() {
		defer close(out)
		if s.Delay > 0 {
			t := time.NewTimer(s.Delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
		out <- s.Script
	}()
	return out, nil
}

// Transcribe joins every fragment from in. When recognition is
// unsupported or hears nothing, the default script is returned and
// fallback is true.
func Transcribe(ctx context.Context, in Input) (text string, fallback bool, err error) {
	if in == nil {
		return DefaultScript, true, nil
	}
	fragments, err := in.Listen(ctx)
	if errors.Is(err, ErrUnsupported) {
		return DefaultScript, true, nil
	}
	if err != nil {
		return "", false, err
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case f, ok := <-fragments:
			if !ok {
				if err := ctx.Err(); err != nil {
					return "", false, err
				}
				joined := strings.TrimSpace(strings.Join(parts, " "))
				if joined == "" {
					return DefaultScript, true, nil
				}
				return joined, false, nil
			}
			parts = append(parts, strings.TrimSpace(f))
		}
	}
}

// SilentOutput logs what would have been spoken.
type SilentOutput struct {
	Log logrus.FieldLogger
}

func (s SilentOutput) Speak(_ context.Context, text string) error {
	if s.Log != nil {
		s.Log.WithField("chars", len(text)).Debug("speech output unavailable, skipping playback")
	}
	return nil
}

func (SilentOutput) Cancel() error { return nil }

// Reader tracks read-aloud toggles per key, typically a session.
type Reader struct {
	out Output

	mu       sync.Mutex
	speaking map[string]bool
}

func NewReader(out Output) *Reader {
	if out == nil {
		out = SilentOutput{}
	}
	return &Reader{out: out, speaking: make(map[string]bool)}
}

// Toggle starts reading text for key, or stops if it is already reading.
// It returns whether key is now speaking.
func (r *Reader) Toggle(ctx context.Context, key, text string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.speaking[key] {
		delete(r.speaking, key)
		return false, r.out.Cancel()
	}
	if err := r.out.Speak(ctx, text); err != nil {
		return false, err
	}
	r.speaking[key] = true
	return true, nil
}

// Stop cancels playback for key, e.g. when a patient card closes.
func (r *Reader) Stop(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.speaking[key] {
		return nil
	}
	delete(r.speaking, key)
	return r.out.Cancel()
}

func (r *Reader) Speaking(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speaking[key]
}
