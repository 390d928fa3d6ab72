package notification

import (
	"testing"
	"time"
)

// fakeScheduler records scheduled callbacks so tests can fire them in order.
type fakeScheduler struct {
	delays []time.Duration
	funcs  []func()
}

func (s *fakeScheduler) afterFunc(d time.Duration, f func()) {
	s.delays = append(s.delays, d)
	s.funcs = append(s.funcs, f)
}

var fixedTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestTimer() (*Timer, *fakeScheduler) {
	s := &fakeScheduler{}
	return NewTimerWithClock(DismissDelay, s.afterFunc, func() time.Time { return fixedTime }), s
}

func TestTimer_ShowThenDismiss(t *testing.T) {
	timer, sched := newTestTimer()

	if _, ok := timer.Current(); ok {
		t.Fatal("expected no message before Show")
	}

	timer.Show("Signed up!", KindSuccess)

	msg, ok := timer.Current()
	if !ok {
		t.Fatal("expected visible message after Show")
	}
	if msg.Text != "Signed up!" || msg.Kind != KindSuccess || !msg.ShownAt.Equal(fixedTime) {
		t.Errorf("Current() = %+v", msg)
	}
	if len(sched.delays) != 1 || sched.delays[0] != 5*time.Second {
		t.Fatalf("scheduled delays = %v, want [5s]", sched.delays)
	}

	sched.funcs[0]()
	if _, ok := timer.Current(); ok {
		t.Error("expected message hidden after dismissal fired")
	}
}

func TestTimer_EarlierDismissalHidesNewerMessage(t *testing.T) {
	timer, sched := newTestTimer()

	timer.Show("first", KindSuccess)
	timer.Show("second", KindError)

	msg, ok := timer.Current()
	if !ok || msg.Text != "second" || msg.Kind != KindError {
		t.Fatalf("Current() = %+v, %v; want second/error visible", msg, ok)
	}
	if len(sched.funcs) != 2 {
		t.Fatalf("expected 2 independent dismissals, got %d", len(sched.funcs))
	}

	// The first show's dismissal owns whatever is visible when it fires.
	sched.funcs[0]()
	if _, ok := timer.Current(); ok {
		t.Error("expected first dismissal to hide the newer message")
	}

	// The second dismissal finds nothing visible and is harmless.
	sched.funcs[1]()
	if _, ok := timer.Current(); ok {
		t.Error("expected nothing visible")
	}
}

func TestTimer_ShowAfterDismissal(t *testing.T) {
	timer, sched := newTestTimer()

	timer.Show("first", KindSuccess)
	sched.funcs[0]()
	timer.Show("again", KindError)

	msg, ok := timer.Current()
	if !ok || msg.Text != "again" {
		t.Errorf("Current() = %+v, %v; want again visible", msg, ok)
	}
}
