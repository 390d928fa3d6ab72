package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"rosterboard/internal/application/board"
	"rosterboard/internal/domain/notification"
)

// VisitTTL is how long an idle visit keeps its draft and message.
const VisitTTL = 30 * time.Minute

const visitCookieName = "roster_visit"

type visitEntry struct {
	visit    *board.Visit
	lastSeen time.Time
}

// VisitStore is an in-memory store of visits keyed by cookie token.
// Expired visits are swept whenever a new one is created.
type VisitStore struct {
	mu       sync.Mutex
	visits   map[string]*visitEntry
	newTimer func() *notification.Timer
	now      func() time.Time
}

// NewVisitStore creates an empty store. newTimer builds each visit's
// notification timer.
// PRE: newTimer is non-nil
func NewVisitStore(newTimer func() *notification.Timer) *VisitStore {
	return &VisitStore{
		visits:   make(map[string]*visitEntry),
		newTimer: newTimer,
		now:      time.Now,
	}
}

// Create starts a visit and returns its token.
// POST: Get(token) returns the visit until it is idle for VisitTTL
func (vs *VisitStore) Create() (string, *board.Visit) {
	token := uuid.NewString()
	v := board.NewVisit(vs.newTimer())

	vs.mu.Lock()
	defer vs.mu.Unlock()
	now := vs.now()
	for t, e := range vs.visits {
		if now.Sub(e.lastSeen) > VisitTTL {
			delete(vs.visits, t)
		}
	}
	vs.visits[token] = &visitEntry{visit: v, lastSeen: now}
	return token, v
}

// Get retrieves a live visit and marks it as seen.
// PRE: none
// POST: Returns false for unknown or expired tokens
func (vs *VisitStore) Get(token string) (*board.Visit, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	e, ok := vs.visits[token]
	if !ok {
		return nil, false
	}
	now := vs.now()
	if now.Sub(e.lastSeen) > VisitTTL {
		delete(vs.visits, token)
		return nil, false
	}
	e.lastSeen = now
	return e.visit, true
}

// Len returns the number of stored visits.
func (vs *VisitStore) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.visits)
}

// visitFor returns the visit named by the request cookie, or nil.
func (h *handlers) visitFor(r *http.Request) *board.Visit {
	c, err := r.Cookie(visitCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	v, _ := h.visits.Get(c.Value)
	return v
}

// ensureVisit returns the request's visit, starting one and setting its
// cookie when the request carries none.
func (h *handlers) ensureVisit(w http.ResponseWriter, r *http.Request) *board.Visit {
	if v := h.visitFor(r); v != nil {
		return v
	}
	token, v := h.visits.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     visitCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(VisitTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return v
}
