package projections

import (
	"context"
	"fmt"

	"rosterboard/internal/domain/enrollment"
)

// CatalogStore defines the store interface needed by GetCatalog.
type CatalogStore interface {
	ListRosters(ctx context.Context) ([]enrollment.Roster, error)
}

// GetCatalogDeps holds dependencies for the projection.
type GetCatalogDeps struct {
	Store CatalogStore
}

// CatalogDetails is the wire form of one activity record served by the stub
// service. Participants are bare email strings.
type CatalogDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// CatalogEntry pairs an activity name with its details.
type CatalogEntry struct {
	Name    string
	Details CatalogDetails
}

// ExecuteGetCatalog lists every activity with its participants in seeded order.
// PRE: deps.Store is non-nil
// POST: Entries follow activity position; Participants is never nil
func ExecuteGetCatalog(ctx context.Context, deps GetCatalogDeps) ([]CatalogEntry, error) {
	rosters, err := deps.Store.ListRosters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(rosters))
	for _, r := range rosters {
		entries = append(entries, CatalogEntry{
			Name: r.Activity.Name,
			Details: CatalogDetails{
				Description:     r.Activity.Description,
				Schedule:        r.Activity.Schedule,
				MaxParticipants: r.Activity.MaxParticipants,
				Participants:    r.Emails(),
			},
		})
	}
	return entries, nil
}
