package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"rosterboard/internal/adapters/activities"
	"rosterboard/internal/application/board"
	"rosterboard/internal/application/orchestrators"
	"rosterboard/internal/config"
	"rosterboard/internal/domain/notification"
)

// cliEnv is the process surface run talks to.
type cliEnv struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive func() bool
	vars        map[string]string // nil reads the process environment
}

// errMutationFailed marks a mutation the service rejected or never received.
var errMutationFailed = errors.New("mutation failed")

const usage = `Usage: rosterctl [flags] <command> [command flags]

Commands:
  list                                   show every activity and its participants
  signup -a ACTIVITY -e EMAIL            sign EMAIL up for ACTIVITY
  unregister -a ACTIVITY -p PARTICIPANT  remove PARTICIPANT from ACTIVITY

Flags:
`

func run(ctx context.Context, args []string, env cliEnv) error {
	var cfg config.CLI
	var err error
	if env.vars != nil {
		err = config.ParseEnvMap(&cfg, env.vars)
	} else {
		err = config.ParseEnv(&cfg)
	}
	if err != nil {
		return err
	}

	global := pflag.NewFlagSet("rosterctl", pflag.ContinueOnError)
	global.SetOutput(env.stderr)
	global.SetInterspersed(false)
	global.StringVar(&cfg.ServiceURL, "service", cfg.ServiceURL, "activities service base URL")
	global.DurationVar(&cfg.ServiceTimeout, "timeout", cfg.ServiceTimeout, "per-request timeout")
	global.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	global.Usage = func() {
		fmt.Fprint(env.stderr, usage)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	slog.SetDefault(config.NewLogger(env.stderr, config.Logging{Level: cfg.LogLevel, Format: "text"}))

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	client := activities.NewHTTPClient(cfg.ServiceURL, cfg.ServiceTimeout, nil)
	c := &commands{
		env:    env,
		client: client,
		board:  board.New(client),
		visit:  board.NewVisit(notification.NewTimer()),
	}

	switch rest[0] {
	case "list":
		return c.list(ctx)
	case "signup":
		return c.signup(ctx, rest[1:])
	case "unregister":
		return c.unregister(ctx, rest[1:])
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

type commands struct {
	env    cliEnv
	client *activities.HTTPClient
	board  *board.Board
	visit  *board.Visit
}

// list prints the roster region as text.
func (c *commands) list(ctx context.Context) error {
	err := c.board.Refresh(ctx)
	v := c.board.Snapshot()
	if v.Roster.Message != "" {
		fmt.Fprintln(c.env.stdout, v.Roster.Message)
		return err
	}
	for i, card := range v.Roster.Cards {
		if i > 0 {
			fmt.Fprintln(c.env.stdout)
		}
		fmt.Fprintln(c.env.stdout, card.Title)
		if card.Description != "" {
			fmt.Fprintf(c.env.stdout, "  %s\n", card.Description)
		}
		fmt.Fprintf(c.env.stdout, "  Schedule: %s\n", card.Schedule)
		fmt.Fprintf(c.env.stdout, "  Availability: %s\n", card.Availability)
		fmt.Fprintf(c.env.stdout, "  %s:\n", card.Heading)
		for _, row := range card.Rows {
			fmt.Fprintf(c.env.stdout, "    - %s\n", row.Label)
		}
	}
	return nil
}

func (c *commands) deps(confirm orchestrators.Confirmer) orchestrators.MutationDeps {
	return orchestrators.MutationDeps{
		Client:    c.client,
		Notifier:  c.visit,
		Refresher: c.board,
		Form:      c.visit,
		Confirmer: confirm,
	}
}

func (c *commands) signup(ctx context.Context, args []string) error {
	var in orchestrators.SignupInput
	fs := pflag.NewFlagSet("signup", pflag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	fs.StringVarP(&in.Activity, "activity", "a", "", "activity name")
	fs.StringVarP(&in.Email, "email", "e", "", "student email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := orchestrators.ExecuteSignup(ctx, in, c.deps(nil))
	if err != nil {
		return err
	}
	return c.report(res)
}

func (c *commands) unregister(ctx context.Context, args []string) error {
	var in orchestrators.UnregisterInput
	var yes bool
	fs := pflag.NewFlagSet("unregister", pflag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	fs.StringVarP(&in.Activity, "activity", "a", "", "activity name")
	fs.StringVarP(&in.Key, "participant", "p", "", "participant email as listed")
	fs.BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var confirm orchestrators.Confirmer
	switch {
	case yes:
		confirm = alwaysConfirm{}
	case c.env.interactive != nil && c.env.interactive():
		confirm = &promptConfirmer{in: bufio.NewReader(c.env.stdin), out: c.env.stdout}
	default:
		return errors.New("stdin is not a terminal; pass --yes to confirm the removal")
	}

	in.Label = c.participantLabel(ctx, in.Activity, in.Key)

	res, err := orchestrators.ExecuteUnregister(ctx, in, c.deps(confirm))
	if err != nil {
		return err
	}
	if res.Outcome == orchestrators.OutcomeDeclined {
		fmt.Fprintln(c.env.stdout, "Cancelled")
		return nil
	}
	return c.report(res)
}

// participantLabel looks the participant up in a fresh roster so prompts and
// messages use the name shown by list. Falls back to "" (the key) when the
// roster cannot be loaded or the participant is not listed.
func (c *commands) participantLabel(ctx context.Context, activity, key string) string {
	if err := c.board.Refresh(ctx); err != nil {
		slog.Debug("participant_label_unresolved", "activity", activity, "error", err)
		return ""
	}
	for _, card := range c.board.Snapshot().Roster.Cards {
		if card.Title != activity {
			continue
		}
		for _, row := range card.Rows {
			if row.Removal != nil && row.Removal.Key == key {
				return row.Removal.Label
			}
		}
	}
	return ""
}

// report prints the notification a mutation produced.
func (c *commands) report(res orchestrators.MutationResult) error {
	if res.Kind == notification.KindError {
		fmt.Fprintln(c.env.stderr, res.Message)
		return errMutationFailed
	}
	fmt.Fprintln(c.env.stdout, res.Message)
	return nil
}

// promptConfirmer asks on the terminal; only y or yes confirms.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *promptConfirmer) Confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(context.Context, string) bool { return true }
