package enrollment

import (
	"context"

	domain "rosterboard/internal/domain/enrollment"
)

// Store persists activities and their participants.
type Store interface {
	SaveActivity(ctx context.Context, a domain.Activity) error
	GetActivityByName(ctx context.Context, name string) (domain.Activity, error)
	CountActivities(ctx context.Context) (int, error)
	ListRosters(ctx context.Context) ([]domain.Roster, error)
	AddParticipant(ctx context.Context, p domain.Participant) error
	RemoveParticipant(ctx context.Context, activityID, email string) error
}
