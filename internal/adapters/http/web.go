package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"rosterboard/internal/adapters/http/middleware"
	"rosterboard/internal/adapters/http/perf"
	"rosterboard/internal/application/board"
	"rosterboard/internal/application/orchestrators"
	"rosterboard/internal/domain/notification"
)

//go:embed templates/*.html static/*
var assets embed.FS

// DefaultRateLimitPerSecond is the per-IP request budget when Deps leaves it unset.
const DefaultRateLimitPerSecond = 10

// Deps holds everything the board front needs. NewTimer builds each
// visitor's notification timer and defaults to notification.NewTimer.
type Deps struct {
	Board     *board.Board
	Client    orchestrators.MutationClient
	Collector *perf.Collector
	NewTimer  func() *notification.Timer

	CSRFKey            []byte
	CSRF               middleware.CSRFOptions
	RateLimitPerSecond int
	SlowRequestMs      int

	// MarkdownDescriptions renders descriptions through goldmark.
	MarkdownDescriptions bool
}

// ErrCSRFKeyRequired is returned by ParseCSRFKey in production without a key.
var ErrCSRFKeyRequired = errors.New("CSRF key is required in production")

// ParseCSRFKey decodes a hex-encoded 32-byte CSRF secret. Outside production
// an empty value yields a random key for this process.
// PRE: none
// POST: Returns a 32-byte key or an error
func ParseCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("CSRF key must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, ErrCSRFKeyRequired
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	slog.Warn("csrf_event", "event", "random_key", "detail", "form tokens won't survive restart")
	return key, nil
}

// NewMux wires HTTP handlers for the board front.
// PRE: deps.Board and deps.Client are non-nil; deps.CSRFKey is 32 bytes
// POST: Returns the handler with middleware applied
func NewMux(deps Deps) http.Handler {
	newTimer := deps.NewTimer
	if newTimer == nil {
		newTimer = notification.NewTimer
	}
	h := &handlers{
		board:         deps.Board,
		client:        deps.Client,
		collector:     deps.Collector,
		pages:         mustParsePages(),
		visits:        NewVisitStore(newTimer),
		secureCookies: deps.CSRF.Production,
		markdown:      deps.MarkdownDescriptions,
	}

	static, _ := fs.Sub(assets, "static")

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /signup", h.handleSignup)
	mux.HandleFunc("POST /unregister", h.handleUnregister)
	mux.HandleFunc("GET /api/board", h.handleBoardSnapshot)
	mux.HandleFunc("GET /api/perf", h.handlePerf)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	rate := deps.RateLimitPerSecond
	if rate <= 0 {
		rate = DefaultRateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Apply middleware: Timing -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders,
		middleware.CSRF(deps.CSRFKey, deps.CSRF),
		middleware.Timing(deps.Collector, deps.SlowRequestMs),
	)
}
