package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rosterboard/internal/adapters/activities"
	web "rosterboard/internal/adapters/http"
	"rosterboard/internal/adapters/http/middleware"
	"rosterboard/internal/adapters/http/perf"
	"rosterboard/internal/application/board"
	"rosterboard/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var cfg config.Board
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(config.NewLogger(os.Stdout, cfg.Logging))

	csrfKey, err := web.ParseCSRFKey(cfg.CSRFKey, cfg.Production())
	if err != nil {
		log.Fatalf("invalid ROSTER_CSRF_KEY: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	client := activities.NewHTTPClient(cfg.ServiceURL, cfg.ServiceTimeout, collector)
	b := board.New(client)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial bootstrap; a failure is already shown in the roster region.
	if err := b.Refresh(ctx); err != nil {
		slog.Warn("board_event", "event", "initial_load_failed", "service", cfg.ServiceURL, "error", err)
	}

	mux := web.NewMux(web.Deps{
		Board:     b,
		Client:    client,
		Collector: collector,
		CSRFKey:   csrfKey,
		CSRF: middleware.CSRFOptions{
			Production:     cfg.Production(),
			TrustedOrigins: cfg.TrustedOrigins,
		},
		RateLimitPerSecond:   cfg.RateLimit,
		SlowRequestMs:        cfg.SlowRequestMs,
		MarkdownDescriptions: cfg.MarkdownDescriptions,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("board_event", "event", "shutdown_failed", "error", err)
		}
	}()

	slog.Info("board_event", "event", "starting", "version", version, "addr", cfg.Addr,
		"env", cfg.Env, "service", cfg.ServiceURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	slog.Info("board_event", "event", "stopped")
}
