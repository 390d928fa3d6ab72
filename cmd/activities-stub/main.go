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

	"rosterboard/internal/adapters/email"
	"rosterboard/internal/adapters/http/perf"
	"rosterboard/internal/adapters/http/stubapi"
	"rosterboard/internal/adapters/storage"
	enrollmentStore "rosterboard/internal/adapters/storage/enrollment"
	"rosterboard/internal/application/orchestrators"
	"rosterboard/internal/config"
)

func main() {
	var cfg config.Stub
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(config.NewLogger(os.Stdout, cfg.Logging))

	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)
	store := enrollmentStore.NewSQLiteStore(timedDB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orchestrators.ExecuteSeedActivities(ctx, orchestrators.SeedActivitiesDeps{Store: store}); err != nil {
		log.Fatalf("failed to seed activities: %v", err)
	}

	sender := email.NewSender(cfg.ResendKey, cfg.ResendFrom)
	if cfg.ResendKey == "" {
		slog.Info("stub_event", "event", "email_disabled", "detail", "set ROSTER_RESEND_KEY for real delivery")
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: stubapi.NewMux(stubapi.Deps{
			Store:     store,
			Sender:    sender,
			Collector: collector,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("stub_event", "event", "starting", "addr", cfg.Addr, "db", cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
