package projections

import (
	"context"
	"fmt"

	"rosterboard/internal/domain/roster"
)

// RosterFetcher defines the activities-service capability needed by this projection.
type RosterFetcher interface {
	FetchActivities(ctx context.Context) ([]byte, error)
}

// GetRosterDeps holds dependencies for the projection.
type GetRosterDeps struct {
	Client RosterFetcher
}

// RosterResult is the canonical directory plus its display-ready projection.
type RosterResult struct {
	Directory  roster.Directory
	Activities []roster.Activity
}

// ExecuteGetRoster fetches the activity directory and projects every record.
// PRE: deps.Client is non-nil
// POST: On success Activities follows Directory order; malformed payloads
// yield an empty roster rather than an error
func ExecuteGetRoster(ctx context.Context, deps GetRosterDeps) (RosterResult, error) {
	body, err := deps.Client.FetchActivities(ctx)
	if err != nil {
		return RosterResult{}, fmt.Errorf("fetch activities: %w", err)
	}

	dir := roster.Normalize(body)
	return RosterResult{
		Directory:  dir,
		Activities: dir.Activities(),
	}, nil
}
