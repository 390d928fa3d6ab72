// Package stubapi serves a self-contained activities service with the same
// wire contract the signup board consumes.
package stubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/pretty"

	"rosterboard/internal/adapters/email"
	"rosterboard/internal/adapters/http/middleware"
	"rosterboard/internal/adapters/http/perf"
	"rosterboard/internal/application/orchestrators"
	"rosterboard/internal/application/projections"
	"rosterboard/internal/domain/enrollment"
)

// Store is the persistence the stub service needs.
type Store interface {
	orchestrators.EnrollmentStore
	projections.CatalogStore
}

// Deps holds the stub service dependencies. Sender and Collector are optional.
type Deps struct {
	Store     Store
	Sender    email.Sender
	Collector *perf.Collector
	Clock     func() time.Time
}

type handlers struct {
	deps Deps
}

// NewMux wires the stub service routes.
// PRE: deps.Store is non-nil
// POST: Returns a handler serving GET /activities, the two mutations and /healthz
func NewMux(deps Deps) http.Handler {
	h := &handlers{deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /activities", h.handleListActivities)
	mux.HandleFunc("POST /activities/{activity}/signup", h.handleSignup)
	mux.HandleFunc("POST /activities/{activity}/unregister", h.handleUnregister)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.Chain(mux, middleware.Timing(deps.Collector, 0))
}

// handleListActivities writes the catalog as one JSON object keyed by activity
// name in seeded order. ?pretty=1 indents the output.
func (h *handlers) handleListActivities(w http.ResponseWriter, r *http.Request) {
	entries, err := projections.ExecuteGetCatalog(r.Context(), projections.GetCatalogDeps{Store: h.deps.Store})
	if err != nil {
		internalError(w, err)
		return
	}
	body, err := encodeCatalog(entries)
	if err != nil {
		internalError(w, err)
		return
	}
	if r.URL.Query().Get("pretty") != "" {
		body = pretty.Pretty(body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// encodeCatalog builds the object by hand; a Go map would lose the order.
func encodeCatalog(entries []projections.CatalogEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (h *handlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, orchestrators.ExecuteEnroll)
}

func (h *handlers) handleUnregister(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, orchestrators.ExecuteWithdraw)
}

type enrollFunc func(context.Context, orchestrators.EnrollInput, orchestrators.EnrollDeps) (string, error)

func (h *handlers) mutate(w http.ResponseWriter, r *http.Request, run enrollFunc) {
	input := orchestrators.EnrollInput{
		Activity: r.PathValue("activity"),
		Email:    r.URL.Query().Get("email"),
	}
	msg, err := run(r.Context(), input, orchestrators.EnrollDeps{
		Store:  h.deps.Store,
		Sender: h.deps.Sender,
		Clock:  h.deps.Clock,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	case errors.Is(err, enrollment.ErrActivityNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, enrollment.ErrAlreadySignedUp), errors.Is(err, enrollment.ErrNotSignedUp):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orchestrators.ErrEmailMissing):
		writeDetail(w, http.StatusUnprocessableEntity, "email query parameter is required")
	default:
		internalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// internalError logs the real error and returns a generic detail to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeDetail(w, http.StatusInternalServerError, "internal server error")
}
