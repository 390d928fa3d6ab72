package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rosterboard/internal/adapters/email"
	"rosterboard/internal/domain/enrollment"
)

// EnrollmentStore defines the store interface needed by Enroll and Withdraw.
type EnrollmentStore interface {
	GetActivityByName(ctx context.Context, name string) (enrollment.Activity, error)
	AddParticipant(ctx context.Context, p enrollment.Participant) error
	RemoveParticipant(ctx context.Context, activityID, email string) error
}

// EnrollInput carries input for the enroll and withdraw orchestrators.
type EnrollInput struct {
	Activity string
	Email    string
}

// EnrollDeps holds dependencies for ExecuteEnroll and ExecuteWithdraw.
// Sender is optional; when set a confirmation is mailed after each signup.
type EnrollDeps struct {
	Store      EnrollmentStore
	Sender     email.Sender
	GenerateID func() string
	Clock      func() time.Time
}

// ExecuteEnroll registers an email for an activity.
// PRE: Email is non-empty
// POST: Participant is stored and the confirmation message returned, or one of
// enrollment.ErrActivityNotFound / enrollment.ErrAlreadySignedUp
func ExecuteEnroll(ctx context.Context, input EnrollInput, deps EnrollDeps) (string, error) {
	addr := strings.TrimSpace(input.Email)
	if addr == "" {
		return "", ErrEmailMissing
	}

	a, err := deps.Store.GetActivityByName(ctx, input.Activity)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	if deps.GenerateID != nil {
		id = deps.GenerateID()
	}
	now := time.Now()
	if deps.Clock != nil {
		now = deps.Clock()
	}
	p := enrollment.Participant{ID: id, ActivityID: a.ID, Email: addr, JoinedAt: now}
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := deps.Store.AddParticipant(ctx, p); err != nil {
		return "", err
	}

	slog.Info("enrollment_event", "event", "participant_added", "activity", a.Name, "email", addr)
	sendConfirmation(ctx, deps.Sender, a, addr)
	return enrollment.SignupMessage(addr, a.Name), nil
}

// ExecuteWithdraw removes an email from an activity.
// PRE: Email is non-empty
// POST: Participant is removed and the confirmation message returned, or one of
// enrollment.ErrActivityNotFound / enrollment.ErrNotSignedUp
func ExecuteWithdraw(ctx context.Context, input EnrollInput, deps EnrollDeps) (string, error) {
	addr := strings.TrimSpace(input.Email)
	if addr == "" {
		return "", ErrEmailMissing
	}

	a, err := deps.Store.GetActivityByName(ctx, input.Activity)
	if err != nil {
		return "", err
	}
	if err := deps.Store.RemoveParticipant(ctx, a.ID, addr); err != nil {
		return "", err
	}

	slog.Info("enrollment_event", "event", "participant_removed", "activity", a.Name, "email", addr)
	return enrollment.UnregisterMessage(addr, a.Name), nil
}

// sendConfirmation failures are logged and never fail the signup.
func sendConfirmation(ctx context.Context, sender email.Sender, a enrollment.Activity, addr string) {
	if sender == nil || !strings.Contains(addr, "@") {
		return
	}
	body := fmt.Sprintf("<p>You are signed up for <strong>%s</strong>.</p><p>%s</p>",
		html.EscapeString(a.Name), html.EscapeString(a.Schedule))
	_, err := sender.Send(ctx, email.SendRequest{
		To:      []string{addr},
		Subject: "Signed up for " + a.Name,
		HTML:    body,
	})
	if err != nil {
		slog.Warn("enrollment_event", "event", "confirmation_failed", "email", addr, "error", err)
	}
}
