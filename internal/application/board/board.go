package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rosterboard/internal/application/projections"
	"rosterboard/internal/domain/notification"
)

// LoadState is the state of the most recent roster fetch.
type LoadState string

const (
	StateLoading   LoadState = "loading"
	StateLoaded    LoadState = "loaded"
	StateLoadError LoadState = "load_error"
)

// Form is the signup form draft.
type Form struct {
	Activity string `json:"activity"`
	Email    string `json:"email"`
}

// View is a point-in-time copy of everything one visitor sees.
type View struct {
	Regions
	State        LoadState             `json:"state"`
	LoadedAt     time.Time             `json:"loaded_at"`
	Form         Form                  `json:"form"`
	Notification *notification.Message `json:"notification,omitempty"`
}

// Board owns the two render targets of one signup board. The roster is the
// same for every visitor; form drafts and status messages live in a Visit.
//
// INVARIANT: regions are replaced wholesale under the lock and never mutated
// in place; a View may share slices with them.
type Board struct {
	mu       sync.RWMutex
	regions  Regions
	state    LoadState
	loadedAt time.Time

	fetcher projections.RosterFetcher
	now     func() time.Time
}

// New creates a Board showing the loading placeholder.
// PRE: fetcher is non-nil
// POST: Snapshot().State == StateLoading
func New(fetcher projections.RosterFetcher) *Board {
	return &Board{
		regions: NewRegions(),
		state:   StateLoading,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Refresh runs the fetch, normalize and render chain and replaces the regions.
// PRE: ctx is valid
// POST: On success the regions reflect the fetched directory; on failure the
// roster shows the load failure message and the error is returned
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.state = StateLoading
	b.mu.Unlock()

	var next Regions
	res, err := projections.ExecuteGetRoster(ctx, projections.GetRosterDeps{Client: b.fetcher})
	if err != nil {
		RenderFailure(&next)
		slog.Error("roster_event", "event", "fetch_failed", "error", err)
	} else {
		Render(&next, res.Activities)
		slog.Debug("roster_event", "event", "rendered", "activities", len(res.Activities))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.regions = next
	b.loadedAt = b.now()
	if err != nil {
		b.state = StateLoadError
		return err
	}
	b.state = StateLoaded
	return nil
}

// Snapshot returns the shared part of the board: regions and load state,
// with an empty form and no status message.
func (b *Board) Snapshot() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return View{
		Regions:  b.regions,
		State:    b.state,
		LoadedAt: b.loadedAt,
	}
}

// ViewFor returns the board as seen by visit. A nil visit sees Snapshot().
func (b *Board) ViewFor(visit *Visit) View {
	v := b.Snapshot()
	if visit == nil {
		return v
	}
	v.Form = visit.Form()
	v.Notification = visit.Notification()
	return v
}

// Visit is one visitor's signup form draft and status message slot.
type Visit struct {
	mu      sync.Mutex
	form    Form
	notices *notification.Timer
}

// NewVisit creates a visit with an empty draft.
// PRE: notices is non-nil and not shared with another visit
func NewVisit(notices *notification.Timer) *Visit {
	return &Visit{notices: notices}
}

// Show displays a status message to this visitor.
func (v *Visit) Show(text string, kind notification.Kind) {
	v.notices.Show(text, kind)
}

// KeepForm stores the submitted signup values so they survive a failed attempt.
func (v *Visit) KeepForm(f Form) {
	v.mu.Lock()
	v.form = f
	v.mu.Unlock()
}

// ResetForm clears the signup form draft.
func (v *Visit) ResetForm() {
	v.mu.Lock()
	v.form = Form{}
	v.mu.Unlock()
}

// Form returns the current draft.
func (v *Visit) Form() Form {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

// Notification returns the visible status message, or nil.
func (v *Visit) Notification() *notification.Message {
	if msg, ok := v.notices.Current(); ok {
		return &msg
	}
	return nil
}
