package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rosterboard/internal/domain/enrollment"
)

// ActivityStoreForSeed defines the store interface needed by SeedActivities.
type ActivityStoreForSeed interface {
	CountActivities(ctx context.Context) (int, error)
	SaveActivity(ctx context.Context, a enrollment.Activity) error
	AddParticipant(ctx context.Context, p enrollment.Participant) error
}

// SeedActivitiesDeps holds dependencies for SeedActivities.
type SeedActivitiesDeps struct {
	Store ActivityStoreForSeed
	Clock func() time.Time
}

type seedActivity struct {
	name         string
	description  string
	schedule     string
	max          int
	participants []string
}

var defaultActivities = []seedActivity{
	{
		name:         "Chess Club",
		description:  "Learn strategies and compete in chess tournaments",
		schedule:     "Fridays, 3:30 PM - 5:00 PM",
		max:          12,
		participants: []string{"michael@mergington.edu", "daniel@mergington.edu"},
	},
	{
		name:         "Programming Class",
		description:  "Learn programming fundamentals and build software projects",
		schedule:     "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
		max:          20,
		participants: []string{"emma@mergington.edu", "sophia@mergington.edu"},
	},
	{
		name:         "Gym Class",
		description:  "Physical education and sports activities",
		schedule:     "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
		max:          30,
		participants: []string{"john@mergington.edu", "olivia@mergington.edu"},
	},
}

// ExecuteSeedActivities creates the default activities and their initial
// participants if no activity exists yet.
// PRE: schema is initialized
// POST: Store holds at least the default activities; an existing catalog is untouched
func ExecuteSeedActivities(ctx context.Context, deps SeedActivitiesDeps) error {
	n, err := deps.Store.CountActivities(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil // Already seeded
	}
	now := time.Now
	if deps.Clock != nil {
		now = deps.Clock
	}

	participants := 0
	for i, sa := range defaultActivities {
		a := enrollment.Activity{
			ID:              uuid.New().String(),
			Name:            sa.name,
			Description:     sa.description,
			Schedule:        sa.schedule,
			MaxParticipants: sa.max,
			Position:        i,
		}
		if err := deps.Store.SaveActivity(ctx, a); err != nil {
			return err
		}
		for _, email := range sa.participants {
			p := enrollment.Participant{ID: uuid.New().String(), ActivityID: a.ID, Email: email, JoinedAt: now()}
			if err := deps.Store.AddParticipant(ctx, p); err != nil {
				return err
			}
			participants++
		}
	}

	slog.Info("seed_event", "event", "activities_seeded", "activities", len(defaultActivities), "participants", participants)
	return nil
}
