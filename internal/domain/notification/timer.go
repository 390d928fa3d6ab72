package notification

import (
	"log/slog"
	"sync"
	"time"
)

// Kind classifies a status message for styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// DismissDelay is how long a shown message stays visible.
const DismissDelay = 5 * time.Second

// Message is the status text currently on display.
type Message struct {
	Text    string    `json:"text"`
	Kind    Kind      `json:"kind"`
	ShownAt time.Time `json:"shown_at"`
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func())

// Timer holds the single status message slot and its pending dismissals.
//
// Every Show schedules its own dismissal and none are ever cancelled. A
// dismissal hides whatever message is visible when it fires, so a message
// shown shortly after another one can be hidden before its own delay has
// elapsed.
type Timer struct {
	mu      sync.Mutex
	current Message
	visible bool
	shows   uint64

	delay     time.Duration
	afterFunc AfterFunc
	now       func() time.Time
}

// NewTimer creates a Timer backed by the runtime clock.
func NewTimer() *Timer {
	return NewTimerWithClock(DismissDelay, func(d time.Duration, f func()) { time.AfterFunc(d, f) }, time.Now)
}

// NewTimerWithClock creates a Timer with an injected scheduler and clock.
// PRE: afterFunc and now are non-nil
// POST: Returns a Timer with no visible message
func NewTimerWithClock(delay time.Duration, afterFunc AfterFunc, now func() time.Time) *Timer {
	return &Timer{delay: delay, afterFunc: afterFunc, now: now}
}

// Show makes text visible with the given kind and schedules its dismissal.
// PRE: kind is KindSuccess or KindError
// POST: Current() returns the new message until the next dismissal fires
func (t *Timer) Show(text string, kind Kind) {
	t.mu.Lock()
	t.shows++
	seq := t.shows
	t.current = Message{Text: text, Kind: kind, ShownAt: t.now()}
	t.visible = true
	t.mu.Unlock()

	slog.Debug("notification_event", "event", "shown", "seq", seq, "kind", kind)
	t.afterFunc(t.delay, func() { t.dismiss(seq) })
}

// dismiss hides the visible message on behalf of show number seq.
func (t *Timer) dismiss(seq uint64) {
	t.mu.Lock()
	wasVisible := t.visible
	latest := t.shows
	t.visible = false
	t.mu.Unlock()

	if wasVisible && latest != seq {
		slog.Debug("notification_event", "event", "dismissed_early", "seq", seq, "latest", latest)
	}
}

// Current returns the visible message, if any.
func (t *Timer) Current() (Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.visible
}
