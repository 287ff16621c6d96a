package notification

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the visual category of a notification.
type Kind string

const (
	KindAlert   Kind = "alert"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
)

// MaxItems bounds the feed. Older entries fall off the end.
const MaxItems = 10

// JustNow is the relative time label of a fresh notification.
const JustNow = "Just now"

// Notification is a single feed entry.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Time      string    `json:"time"`
	Type      Kind      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Listener is called after every push, outside the feed lock.
type Listener func(Notification)

// Feed is the shared most-recent-first notification list plus the
// "last update" ticker line shown in the header.
type Feed struct {
	mu         sync.RWMutex
	items      []Notification
	lastUpdate string
	listeners  []Listener
	tickers    []func(string)
	now        func() time.Time
}

// NewFeed returns a feed seeded with the shift notices every session starts with.
func NewFeed() *Feed {
	f := NewEmptyFeed()
	now := f.now()
	f.items = []Notification{
		{ID: uuid.NewString(), Title: "System Maintenance scheduled for 2 AM", Time: "2 hours ago", Type: KindInfo, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: uuid.NewString(), Title: "New Shift Schedule available", Time: "5 hours ago", Type: KindSuccess, CreatedAt: now.Add(-5 * time.Hour)},
	}
	return f
}

// NewEmptyFeed returns a feed with no entries.
func NewEmptyFeed() *Feed {
	return &Feed{now: time.Now}
}

// Subscribe registers l for every future push.
func (f *Feed) Subscribe(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

// Push prepends a notification and trims the feed to MaxItems.
func (f *Feed) Push(title string, kind Kind) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Time:      JustNow,
		Type:      kind,
		CreatedAt: f.now(),
	}

	f.mu.Lock()
	items := make([]Notification, 0, MaxItems)
	items = append(items, n)
	items = append(items, f.items...)
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	f.items = items
	listeners := append([]Listener(nil), f.listeners...)
	f.mu.Unlock()

	for _, l := range listeners {
		l(n)
	}
	return n
}

// List returns a copy of the feed, most recent first.
func (f *Feed) List() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Len returns the number of entries.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// Clear empties the feed.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
}

// SubscribeTicker registers fn for every ticker change.
func (f *Feed) SubscribeTicker(fn func(string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickers = append(f.tickers, fn)
}

// SetLastUpdate replaces the header ticker line.
func (f *Feed) SetLastUpdate(s string) {
	f.mu.Lock()
	f.lastUpdate = s
	tickers := slices.Clone(f.tickers)
	f.mu.Unlock()

	for _, fn := range tickers {
		fn(s)
	}
}

// LastUpdate returns the header ticker line.
func (f *Feed) LastUpdate() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastUpdate
}
