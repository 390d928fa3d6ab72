package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"rosterboard/internal/adapters/http/perf"
	"rosterboard/internal/application/board"
	"rosterboard/internal/application/orchestrators"
	"rosterboard/internal/domain/notification"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// DefaultPerfWindow is how far back GET /api/perf looks without ?minutes=.
const DefaultPerfWindow = 15 * time.Minute

type handlers struct {
	board         *board.Board
	client        orchestrators.MutationClient
	collector     *perf.Collector
	pages         *template.Template
	visits        *VisitStore
	secureCookies bool
	markdown      bool
}

// pageData is what board.html renders. Descriptions are plain text unless
// MarkdownDescriptions is set.
type pageData struct {
	board.View
	CSRFField            template.HTML
	MarkdownDescriptions bool
}

var templateFuncs = template.FuncMap{
	"renderMarkdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"isError": func(k notification.Kind) bool { return k == notification.KindError },
}

func mustParsePages() *template.Template {
	return template.Must(template.New("layout.html").Funcs(templateFuncs).
		ParseFS(assets, "templates/layout.html", "templates/board.html"))
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleIndex fetches the roster and renders the full board page.
func (h *handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	// A failed fetch is already rendered into the roster region.
	_ = h.board.Refresh(r.Context())

	var buf bytes.Buffer
	data := pageData{
		View:                 h.board.ViewFor(h.visitFor(r)),
		CSRFField:            csrf.TemplateField(r),
		MarkdownDescriptions: h.markdown,
	}
	if err := h.pages.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

// mutationDeps routes the notification and form reset to the visitor who
// made the request; only the roster refresh is shared.
func (h *handlers) mutationDeps(visit *board.Visit, confirm orchestrators.Confirmer) orchestrators.MutationDeps {
	return orchestrators.MutationDeps{
		Client:    h.client,
		Notifier:  visit,
		Refresher: h.board,
		Form:      visit,
		Confirmer: confirm,
	}
}

// requestVisit returns the visit a mutation reports to. Form posts always get
// a cookie-backed visit; JSON callers without one get a throwaway visit since
// the result carries the message.
func (h *handlers) requestVisit(w http.ResponseWriter, r *http.Request) *board.Visit {
	if !isJSONRequest(r) {
		return h.ensureVisit(w, r)
	}
	if v := h.visitFor(r); v != nil {
		return v
	}
	return board.NewVisit(h.visits.newTimer())
}

type signupRequest struct {
	Activity string `json:"activity"`
	Email    string `json:"email"`
}

// handleSignup accepts the signup form (redirects back to the board) or a
// JSON body (answers with the mutation result).
func (h *handlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if isJSONRequest(r) {
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	}
	visit := h.requestVisit(w, r)
	if !isJSONRequest(r) {
		req.Activity = r.FormValue("activity")
		req.Email = r.FormValue("email")
		visit.KeepForm(board.Form{Activity: req.Activity, Email: req.Email})
	}

	res, err := orchestrators.ExecuteSignup(r.Context(),
		orchestrators.SignupInput{Activity: req.Activity, Email: req.Email}, h.mutationDeps(visit, nil))
	h.respond(w, r, res, err)
}

type unregisterRequest struct {
	Activity  string `json:"activity"`
	Key       string `json:"key"`
	Label     string `json:"label"`
	Confirmed bool   `json:"confirmed"`
}

// handleUnregister serves every removal control on the page. The browser asks
// for confirmation before submitting and marks the form with confirmed=yes.
func (h *handlers) handleUnregister(w http.ResponseWriter, r *http.Request) {
	var req unregisterRequest
	if isJSONRequest(r) {
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
	} else {
		req.Activity = r.FormValue("activity")
		req.Key = r.FormValue("key")
		req.Label = r.FormValue("label")
		req.Confirmed = r.FormValue("confirmed") == "yes"
	}

	res, err := orchestrators.ExecuteUnregister(r.Context(),
		orchestrators.UnregisterInput{Activity: req.Activity, Key: req.Key, Label: req.Label},
		h.mutationDeps(h.requestVisit(w, r), answeredConfirmer(req.Confirmed)))
	h.respond(w, r, res, err)
}

// answeredConfirmer replays the answer the client already gave.
type answeredConfirmer bool

func (a answeredConfirmer) Confirm(_ context.Context, _ string) bool { return bool(a) }

func (h *handlers) respond(w http.ResponseWriter, r *http.Request, res orchestrators.MutationResult, err error) {
	if isJSONRequest(r) {
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}
	if err != nil && !isMissingInput(err) {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func isMissingInput(err error) bool {
	return errors.Is(err, orchestrators.ErrActivityNotSelected) ||
		errors.Is(err, orchestrators.ErrEmailMissing) ||
		errors.Is(err, orchestrators.ErrRemovalTargetMissing)
}

// handleBoardSnapshot returns the current regions and load state plus the
// caller's own form draft and notification. ?refresh=1 fetches first.
func (h *handlers) handleBoardSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") != "" {
		_ = h.board.Refresh(r.Context())
	}
	writeJSON(w, http.StatusOK, h.board.ViewFor(h.visitFor(r)))
}

// handlePerf returns request, query and upstream timings for the last
// ?minutes= (default 15).
func (h *handlers) handlePerf(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	window := DefaultPerfWindow
	if m, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && m > 0 {
		window = time.Duration(m) * time.Minute
	}
	writeJSON(w, http.StatusOK, h.collector.Snapshot(time.Now().Add(-window), 10))
}

func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
