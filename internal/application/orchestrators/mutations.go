package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"rosterboard/internal/adapters/activities"
	"rosterboard/internal/domain/notification"
	"rosterboard/internal/domain/roster"
)

// Notification texts used when the service gives no usable message.
const (
	SignupSuccessFallback      = "Signed up successfully"
	SignupRejectedFallback     = "An error occurred"
	SignupTransportFailure     = "Failed to sign up. Please try again."
	UnregisterSuccessFallback  = "Participant removed"
	UnregisterRejectedFallback = "Failed to remove participant"
	UnregisterTransportFailure = "Failed to remove participant. Please try again."
)

var (
	ErrActivityNotSelected  = errors.New("activity is required")
	ErrEmailMissing         = errors.New("email is required")
	ErrRemovalTargetMissing = errors.New("activity and participant are required")
	ErrNoConfirmer          = errors.New("no confirmer configured")
)

// Outcome classifies how a mutation ended.
type Outcome string

const (
	OutcomeDeclined       Outcome = "declined"
	OutcomeSuccess        Outcome = "success"
	OutcomeServerError    Outcome = "server_error"
	OutcomeTransportError Outcome = "transport_error"
)

// MutationClient defines the service calls needed by the mutation orchestrators.
type MutationClient interface {
	Signup(ctx context.Context, activity, email string) (activities.Reply, error)
	Unregister(ctx context.Context, activity, key string) (activities.Reply, error)
}

// Notifier shows a status message.
type Notifier interface {
	Show(text string, kind notification.Kind)
}

// RosterRefresher re-runs the fetch and render chain.
type RosterRefresher interface {
	Refresh(ctx context.Context) error
}

// FormResetter clears the signup form draft.
type FormResetter interface {
	ResetForm()
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// MutationDeps holds dependencies for ExecuteSignup and ExecuteUnregister.
// Form and Confirmer are only used by the operations that need them.
type MutationDeps struct {
	Client     MutationClient
	Notifier   Notifier
	Refresher  RosterRefresher
	Form       FormResetter
	Confirmer  Confirmer
	GenerateID func() string
}

func (d MutationDeps) operationID() string {
	if d.GenerateID != nil {
		return d.GenerateID()
	}
	return uuid.NewString()
}

// MutationResult reports what a mutation did and the notification it showed.
// Message and Kind are empty when the operation was declined.
type MutationResult struct {
	OperationID string            `json:"operation_id"`
	Outcome     Outcome           `json:"outcome"`
	Message     string            `json:"message,omitempty"`
	Kind        notification.Kind `json:"kind,omitempty"`
	Refreshed   bool              `json:"refreshed"`
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	Activity string
	Email    string
}

// ExecuteSignup registers an email for an activity and reports the outcome.
// PRE: Activity and Email are non-blank, otherwise no call is made
// POST: Exactly one notification is shown; on success the form draft is reset
// and the roster refreshed
// INVARIANT: the activity name is sent exactly as selected; only the email is
// trimmed, as an email input does
func ExecuteSignup(ctx context.Context, input SignupInput, deps MutationDeps) (MutationResult, error) {
	activity := input.Activity
	email := strings.TrimSpace(input.Email)
	if strings.TrimSpace(activity) == "" {
		return MutationResult{}, ErrActivityNotSelected
	}
	if email == "" {
		return MutationResult{}, ErrEmailMissing
	}

	res := MutationResult{OperationID: deps.operationID()}
	reply, err := deps.Client.Signup(ctx, activity, email)
	switch {
	case err != nil:
		res.Outcome = OutcomeTransportError
		res.Message, res.Kind = SignupTransportFailure, notification.KindError
		slog.Error("signup_event", "event", "transport_failed", "op_id", res.OperationID,
			"activity", activity, "error", err)
	case reply.OK():
		res.Outcome = OutcomeSuccess
		res.Message, res.Kind = orDefault(reply.Message, SignupSuccessFallback), notification.KindSuccess
		slog.Info("signup_event", "event", "signed_up", "op_id", res.OperationID,
			"activity", activity, "email", email)
	default:
		res.Outcome = OutcomeServerError
		res.Message, res.Kind = orDefault(reply.Detail, SignupRejectedFallback), notification.KindError
		slog.Warn("signup_event", "event", "rejected", "op_id", res.OperationID,
			"activity", activity, "status", reply.Status, "detail", reply.Detail)
	}

	deps.Notifier.Show(res.Message, res.Kind)
	if res.Outcome != OutcomeSuccess {
		return res, nil
	}
	if deps.Form != nil {
		deps.Form.ResetForm()
	}
	res.Refreshed = refresh(ctx, deps, res.OperationID)
	return res, nil
}

// UnregisterInput carries input for the unregister orchestrator. Key is the
// participant's removal key and Label the text shown in the confirmation.
type UnregisterInput struct {
	Activity string
	Key      string
	Label    string
}

// ExecuteUnregister removes a participant from an activity after confirmation.
// PRE: Activity and Key are non-empty; deps.Confirmer is set
// POST: If declined, no call, notification or refresh happens; otherwise exactly
// one notification is shown and the roster is refreshed on success
func ExecuteUnregister(ctx context.Context, input UnregisterInput, deps MutationDeps) (MutationResult, error) {
	if input.Activity == "" || input.Key == "" {
		return MutationResult{}, ErrRemovalTargetMissing
	}
	if deps.Confirmer == nil {
		return MutationResult{}, ErrNoConfirmer
	}
	label := orDefault(input.Label, input.Key)

	res := MutationResult{OperationID: deps.operationID()}
	if !deps.Confirmer.Confirm(ctx, roster.RemovalPrompt(label, input.Activity)) {
		res.Outcome = OutcomeDeclined
		slog.Info("unregister_event", "event", "declined", "op_id", res.OperationID,
			"activity", input.Activity)
		return res, nil
	}

	reply, err := deps.Client.Unregister(ctx, input.Activity, input.Key)
	switch {
	case err != nil:
		res.Outcome = OutcomeTransportError
		res.Message, res.Kind = UnregisterTransportFailure, notification.KindError
		slog.Error("unregister_event", "event", "transport_failed", "op_id", res.OperationID,
			"activity", input.Activity, "error", err)
	case reply.OK():
		res.Outcome = OutcomeSuccess
		res.Message, res.Kind = orDefault(reply.Message, UnregisterSuccessFallback), notification.KindSuccess
		slog.Info("unregister_event", "event", "unregistered", "op_id", res.OperationID,
			"activity", input.Activity, "key", input.Key)
	default:
		res.Outcome = OutcomeServerError
		res.Message, res.Kind = orDefault(reply.Detail, UnregisterRejectedFallback), notification.KindError
		slog.Warn("unregister_event", "event", "rejected", "op_id", res.OperationID,
			"activity", input.Activity, "status", reply.Status, "detail", reply.Detail)
	}

	deps.Notifier.Show(res.Message, res.Kind)
	if res.Outcome == OutcomeSuccess {
		res.Refreshed = refresh(ctx, deps, res.OperationID)
	}
	return res, nil
}

// refresh failures are already reflected in the roster region.
func refresh(ctx context.Context, deps MutationDeps, opID string) bool {
	if deps.Refresher == nil {
		return false
	}
	if err := deps.Refresher.Refresh(ctx); err != nil {
		slog.Warn("roster_event", "event", "refresh_after_mutation_failed", "op_id", opID, "error", err)
	}
	return true
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
