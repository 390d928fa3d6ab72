package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Logging selects the slog handler shared by every command.
type Logging struct {
	Level  string `env:"ROSTER_LOG_LEVEL" envDefault:"info"`
	Format string `env:"ROSTER_LOG_FORMAT" envDefault:"json"`
}

// Board configures the board front served by cmd/board.
type Board struct {
	Logging

	Addr           string        `env:"ROSTER_ADDR" envDefault:":8080"`
	ServiceURL     string        `env:"ROSTER_SERVICE_URL" envDefault:"http://localhost:8000"`
	ServiceTimeout time.Duration `env:"ROSTER_SERVICE_TIMEOUT" envDefault:"10s"`
	Env            string        `env:"ROSTER_ENV" envDefault:"development"`
	CSRFKey        string        `env:"ROSTER_CSRF_KEY"`
	TrustedOrigins []string      `env:"ROSTER_TRUSTED_ORIGINS" envSeparator:","`
	RateLimit      int           `env:"ROSTER_RATE_LIMIT" envDefault:"10"`
	SlowRequestMs  int           `env:"ROSTER_SLOW_REQUEST_MS" envDefault:"200"`
	ShutdownGrace  time.Duration `env:"ROSTER_SHUTDOWN_GRACE" envDefault:"10s"`

	// MarkdownDescriptions renders activity descriptions as Markdown instead
	// of plain text.
	MarkdownDescriptions bool `env:"ROSTER_MARKDOWN_DESCRIPTIONS" envDefault:"false"`
}

// Production reports whether the board runs with production safeguards.
func (b Board) Production() bool {
	return b.Env == "production"
}

// Stub configures the development activities service served by cmd/activities-stub.
type Stub struct {
	Logging

	Addr        string `env:"ROSTER_STUB_ADDR" envDefault:":8000"`
	DBPath      string `env:"ROSTER_STUB_DB" envDefault:"activities.db"`
	ResendKey   string `env:"ROSTER_RESEND_KEY"`
	ResendFrom  string `env:"ROSTER_RESEND_FROM" envDefault:"Mergington High School <activities@mergington.edu>"`
	SlowQueryMs int    `env:"ROSTER_SLOW_QUERY_MS" envDefault:"50"`
}

// CLI configures cmd/rosterctl. Flags override these values. Logs always go
// to stderr as text.
type CLI struct {
	LogLevel       string        `env:"ROSTER_LOG_LEVEL" envDefault:"warn"`
	ServiceURL     string        `env:"ROSTER_SERVICE_URL" envDefault:"http://localhost:8000"`
	ServiceTimeout time.Duration `env:"ROSTER_SERVICE_TIMEOUT" envDefault:"10s"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvMap is ParseEnv over an explicit variable set.
func ParseEnvMap(target any, vars map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// NewLogger builds a logger writing to w. Unknown levels fall back to info,
// unknown formats to JSON.
func NewLogger(w io.Writer, l Logging) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(l.Level) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
