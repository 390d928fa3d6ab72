package projections

import (
	"context"
	"errors"
	"testing"
)

// mockFetcher implements RosterFetcher for testing.
type mockFetcher struct {
	body  string
	err   error
	calls int
}

// FetchActivities implements RosterFetcher.
// PRE: none
// POST: returns the canned body or error
func (m *mockFetcher) FetchActivities(_ context.Context) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.body), nil
}

// TestExecuteGetRoster_ProjectsInOrder tests that activities follow payload order.
func TestExecuteGetRoster_ProjectsInOrder(t *testing.T) {
	f := &mockFetcher{body: `{
		"Programming Class": {"max_participants": 20, "participants": ["emma@mergington.edu"]},
		"Chess Club": {"max_participants": 12, "participants": []}
	}`}

	res, err := ExecuteGetRoster(context.Background(), GetRosterDeps{Client: f})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(res.Activities))
	}
	if res.Activities[0].Name != "Programming Class" || res.Activities[1].Name != "Chess Club" {
		t.Errorf("unexpected order: %s, %s", res.Activities[0].Name, res.Activities[1].Name)
	}
	if res.Activities[0].SpotsLeft() != 19 {
		t.Errorf("expected 19 spots left, got %v", res.Activities[0].SpotsLeft())
	}
	if res.Directory.Len() != 2 {
		t.Errorf("expected directory of 2, got %d", res.Directory.Len())
	}
}

// TestExecuteGetRoster_MalformedPayloadIsEmpty tests that an unexpected shape is absorbed.
func TestExecuteGetRoster_MalformedPayloadIsEmpty(t *testing.T) {
	res, err := ExecuteGetRoster(context.Background(), GetRosterDeps{Client: &mockFetcher{body: `"nope"`}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Activities) != 0 {
		t.Errorf("expected empty roster, got %d activities", len(res.Activities))
	}
}

// TestExecuteGetRoster_FetchError tests that transport failures are returned.
func TestExecuteGetRoster_FetchError(t *testing.T) {
	sentinel := errors.New("connection refused")
	_, err := ExecuteGetRoster(context.Background(), GetRosterDeps{Client: &mockFetcher{err: sentinel}})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel error, got %v", err)
	}
}
