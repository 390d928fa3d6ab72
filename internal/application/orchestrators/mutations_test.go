package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"rosterboard/internal/adapters/activities"
	"rosterboard/internal/domain/notification"
)

// mockMutationClient implements MutationClient for testing.
type mockMutationClient struct {
	reply activities.Reply
	err   error
	calls []string
}

// Signup implements MutationClient.
// PRE: none
// POST: records the call and returns the canned reply
func (m *mockMutationClient) Signup(_ context.Context, activity, email string) (activities.Reply, error) {
	m.calls = append(m.calls, "signup "+activity+" "+email)
	return m.reply, m.err
}

// Unregister implements MutationClient.
// PRE: none
// POST: records the call and returns the canned reply
func (m *mockMutationClient) Unregister(_ context.Context, activity, key string) (activities.Reply, error) {
	m.calls = append(m.calls, "unregister "+activity+" "+key)
	return m.reply, m.err
}

// recordingBoard implements Notifier, RosterRefresher and FormResetter.
type recordingBoard struct {
	shown     []notification.Message
	refreshes int
	resets    int
}

func (b *recordingBoard) Show(text string, kind notification.Kind) {
	b.shown = append(b.shown, notification.Message{Text: text, Kind: kind})
}

func (b *recordingBoard) Refresh(_ context.Context) error {
	b.refreshes++
	return nil
}

func (b *recordingBoard) ResetForm() { b.resets++ }

// fixedConfirmer implements Confirmer with a canned answer.
type fixedConfirmer struct {
	answer  bool
	prompts []string
}

func (c *fixedConfirmer) Confirm(_ context.Context, prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

func fixedOpID() string { return "op-1" }

func newMutationDeps(client *mockMutationClient, board *recordingBoard, confirm *fixedConfirmer) MutationDeps {
	d := MutationDeps{
		Client:     client,
		Notifier:   board,
		Refresher:  board,
		Form:       board,
		GenerateID: fixedOpID,
	}
	if confirm != nil {
		d.Confirmer = confirm
	}
	return d
}

func TestExecuteSignup(t *testing.T) {
	tests := []struct {
		name        string
		reply       activities.Reply
		err         error
		wantOutcome Outcome
		wantMessage string
		wantKind    notification.Kind
		wantRefresh int
		wantReset   int
	}{
		{
			name:        "success uses server message",
			reply:       activities.Reply{Status: http.StatusOK, Message: "Signed up!"},
			wantOutcome: OutcomeSuccess, wantMessage: "Signed up!", wantKind: notification.KindSuccess,
			wantRefresh: 1, wantReset: 1,
		},
		{
			name:        "success without message",
			reply:       activities.Reply{Status: http.StatusOK},
			wantOutcome: OutcomeSuccess, wantMessage: SignupSuccessFallback, wantKind: notification.KindSuccess,
			wantRefresh: 1, wantReset: 1,
		},
		{
			name:        "rejection uses server detail",
			reply:       activities.Reply{Status: http.StatusBadRequest, Detail: "Already registered"},
			wantOutcome: OutcomeServerError, wantMessage: "Already registered", wantKind: notification.KindError,
		},
		{
			name:        "rejection without detail",
			reply:       activities.Reply{Status: http.StatusNotFound},
			wantOutcome: OutcomeServerError, wantMessage: SignupRejectedFallback, wantKind: notification.KindError,
		},
		{
			name:        "transport failure",
			err:         fmt.Errorf("%w: connection refused", activities.ErrTransport),
			wantOutcome: OutcomeTransportError, wantMessage: SignupTransportFailure, wantKind: notification.KindError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockMutationClient{reply: tt.reply, err: tt.err}
			board := &recordingBoard{}

			res, err := ExecuteSignup(context.Background(),
				SignupInput{Activity: "Chess Club", Email: " a@x.com "},
				newMutationDeps(client, board, nil))
			if err != nil {
				t.Fatalf("ExecuteSignup() error = %v", err)
			}
			if res.Outcome != tt.wantOutcome || res.Message != tt.wantMessage || res.Kind != tt.wantKind {
				t.Errorf("result = %+v", res)
			}
			if res.OperationID != "op-1" {
				t.Errorf("OperationID = %q", res.OperationID)
			}
			if len(client.calls) != 1 || client.calls[0] != "signup Chess Club a@x.com" {
				t.Errorf("calls = %v", client.calls)
			}
			if len(board.shown) != 1 || board.shown[0].Text != tt.wantMessage || board.shown[0].Kind != tt.wantKind {
				t.Errorf("shown = %+v", board.shown)
			}
			if board.refreshes != tt.wantRefresh || res.Refreshed != (tt.wantRefresh == 1) {
				t.Errorf("refreshes = %d, Refreshed = %v", board.refreshes, res.Refreshed)
			}
			if board.resets != tt.wantReset {
				t.Errorf("resets = %d, want %d", board.resets, tt.wantReset)
			}
		})
	}
}

func TestExecuteSignup_MissingInput(t *testing.T) {
	tests := []struct {
		name    string
		input   SignupInput
		wantErr error
	}{
		{"no activity", SignupInput{Email: "a@x.com"}, ErrActivityNotSelected},
		{"blank activity", SignupInput{Activity: "  ", Email: "a@x.com"}, ErrActivityNotSelected},
		{"no email", SignupInput{Activity: "Chess Club"}, ErrEmailMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockMutationClient{}
			board := &recordingBoard{}
			_, err := ExecuteSignup(context.Background(), tt.input, newMutationDeps(client, board, nil))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(client.calls) != 0 || len(board.shown) != 0 || board.refreshes != 0 {
				t.Errorf("expected no call, notification or refresh: calls=%v shown=%v refreshes=%d",
					client.calls, board.shown, board.refreshes)
			}
		})
	}
}

// TestExecuteSignup_SendsActivityAsSelected verifies surrounding spaces in an
// activity name reach the service, so such an activity can still be joined.
func TestExecuteSignup_SendsActivityAsSelected(t *testing.T) {
	client := &mockMutationClient{reply: activities.Reply{Status: http.StatusOK}}
	board := &recordingBoard{}

	_, err := ExecuteSignup(context.Background(),
		SignupInput{Activity: " Chess Club ", Email: "a@x.com"},
		newMutationDeps(client, board, nil))
	if err != nil {
		t.Fatalf("ExecuteSignup() error = %v", err)
	}
	if len(client.calls) != 1 || client.calls[0] != "signup  Chess Club  a@x.com" {
		t.Errorf("calls = %q, want the activity name unchanged", client.calls)
	}
}

func TestExecuteUnregister(t *testing.T) {
	tests := []struct {
		name        string
		reply       activities.Reply
		err         error
		wantOutcome Outcome
		wantMessage string
		wantKind    notification.Kind
		wantRefresh int
	}{
		{
			name:        "success uses server message",
			reply:       activities.Reply{Status: http.StatusOK, Message: "Unregistered a@x.com from Chess Club"},
			wantOutcome: OutcomeSuccess, wantMessage: "Unregistered a@x.com from Chess Club",
			wantKind: notification.KindSuccess, wantRefresh: 1,
		},
		{
			name:        "success without message",
			reply:       activities.Reply{Status: http.StatusOK},
			wantOutcome: OutcomeSuccess, wantMessage: UnregisterSuccessFallback,
			wantKind: notification.KindSuccess, wantRefresh: 1,
		},
		{
			name:        "rejection uses server detail",
			reply:       activities.Reply{Status: http.StatusBadRequest, Detail: "Student is not signed up for this activity"},
			wantOutcome: OutcomeServerError, wantMessage: "Student is not signed up for this activity",
			wantKind: notification.KindError,
		},
		{
			name:        "rejection without detail",
			reply:       activities.Reply{Status: http.StatusInternalServerError},
			wantOutcome: OutcomeServerError, wantMessage: UnregisterRejectedFallback, wantKind: notification.KindError,
		},
		{
			name:        "transport failure",
			err:         activities.ErrTransport,
			wantOutcome: OutcomeTransportError, wantMessage: UnregisterTransportFailure, wantKind: notification.KindError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockMutationClient{reply: tt.reply, err: tt.err}
			board := &recordingBoard{}
			confirm := &fixedConfirmer{answer: true}

			res, err := ExecuteUnregister(context.Background(),
				UnregisterInput{Activity: "Chess Club", Key: "a@x.com", Label: "Ann"},
				newMutationDeps(client, board, confirm))
			if err != nil {
				t.Fatalf("ExecuteUnregister() error = %v", err)
			}
			if len(confirm.prompts) != 1 || confirm.prompts[0] != "Remove Ann from Chess Club?" {
				t.Errorf("prompts = %v", confirm.prompts)
			}
			if len(client.calls) != 1 || client.calls[0] != "unregister Chess Club a@x.com" {
				t.Errorf("calls = %v", client.calls)
			}
			if res.Outcome != tt.wantOutcome || res.Message != tt.wantMessage || res.Kind != tt.wantKind {
				t.Errorf("result = %+v", res)
			}
			if len(board.shown) != 1 || board.shown[0].Text != tt.wantMessage {
				t.Errorf("shown = %+v", board.shown)
			}
			if board.refreshes != tt.wantRefresh {
				t.Errorf("refreshes = %d, want %d", board.refreshes, tt.wantRefresh)
			}
			if board.resets != 0 {
				t.Errorf("unregister must not reset the signup form, resets = %d", board.resets)
			}
		})
	}
}

func TestExecuteUnregister_Declined(t *testing.T) {
	client := &mockMutationClient{reply: activities.Reply{Status: http.StatusOK}}
	board := &recordingBoard{}
	confirm := &fixedConfirmer{answer: false}

	res, err := ExecuteUnregister(context.Background(),
		UnregisterInput{Activity: "Chess Club", Key: "a@x.com"},
		newMutationDeps(client, board, confirm))
	if err != nil {
		t.Fatalf("ExecuteUnregister() error = %v", err)
	}
	if res.Outcome != OutcomeDeclined || res.Message != "" {
		t.Errorf("result = %+v", res)
	}
	if confirm.prompts[0] != "Remove a@x.com from Chess Club?" {
		t.Errorf("prompt = %q", confirm.prompts[0])
	}
	if len(client.calls) != 0 || len(board.shown) != 0 || board.refreshes != 0 {
		t.Errorf("expected nothing to happen: calls=%v shown=%v refreshes=%d",
			client.calls, board.shown, board.refreshes)
	}
}

func TestExecuteUnregister_Preconditions(t *testing.T) {
	board := &recordingBoard{}
	client := &mockMutationClient{}

	_, err := ExecuteUnregister(context.Background(), UnregisterInput{Activity: "Chess Club"},
		newMutationDeps(client, board, &fixedConfirmer{answer: true}))
	if !errors.Is(err, ErrRemovalTargetMissing) {
		t.Errorf("error = %v, want ErrRemovalTargetMissing", err)
	}

	_, err = ExecuteUnregister(context.Background(), UnregisterInput{Activity: "Chess Club", Key: "a@x.com"},
		newMutationDeps(client, board, nil))
	if !errors.Is(err, ErrNoConfirmer) {
		t.Errorf("error = %v, want ErrNoConfirmer", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("calls = %v", client.calls)
	}
}
