package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rosterboard/internal/adapters/storage"
	domain "rosterboard/internal/domain/enrollment"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new enrollment store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SaveActivity persists an activity (insert or update by ID).
// PRE: a has been validated
// POST: Activity row is persisted
func (s *SQLiteStore) SaveActivity(ctx context.Context, a domain.Activity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (id, name, description, schedule, max_participants, position)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description,
			schedule=excluded.schedule, max_participants=excluded.max_participants, position=excluded.position`,
		a.ID, a.Name, a.Description, a.Schedule, a.MaxParticipants, a.Position,
	)
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	return nil
}

// GetActivityByName retrieves an activity by its exact name.
// PRE: name is non-empty
// POST: Returns the activity or domain.ErrActivityNotFound
func (s *SQLiteStore) GetActivityByName(ctx context.Context, name string) (domain.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, schedule, max_participants, position FROM activity WHERE name = ?", name)

	var a domain.Activity
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Schedule, &a.MaxParticipants, &a.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if err != nil {
		return domain.Activity{}, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

// CountActivities returns the number of stored activities.
func (s *SQLiteStore) CountActivities(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activity").Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

// ListRosters returns every activity in position order with its participants
// in join order.
// PRE: none
// POST: Participants of each roster is non-nil
func (s *SQLiteStore) ListRosters(ctx context.Context) ([]domain.Roster, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, schedule, max_participants, position FROM activity ORDER BY position, name")
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	var rosters []domain.Roster
	index := map[string]int{}
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Schedule, &a.MaxParticipants, &a.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		index[a.ID] = len(rosters)
		rosters = append(rosters, domain.Roster{Activity: a, Participants: []domain.Participant{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	prows, err := s.db.QueryContext(ctx,
		"SELECT id, activity_id, email, joined_at FROM participant ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var p domain.Participant
		var joined string
		if err := prows.Scan(&p.ID, &p.ActivityID, &p.Email, &joined); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.JoinedAt, _ = time.Parse(time.RFC3339, joined)
		if i, ok := index[p.ActivityID]; ok {
			rosters[i].Participants = append(rosters[i].Participants, p)
		}
	}
	return rosters, prows.Err()
}

// AddParticipant registers an email for an activity.
// PRE: p has been validated; its activity exists
// POST: Participant row is persisted, or domain.ErrAlreadySignedUp is returned
func (s *SQLiteStore) AddParticipant(ctx context.Context, p domain.Participant) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO participant (id, activity_id, email, joined_at) VALUES (?, ?, ?, ?)",
		p.ID, p.ActivityID, p.Email, p.JoinedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrAlreadySignedUp
		}
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// RemoveParticipant deletes an email from an activity.
// PRE: activityID and email are non-empty
// POST: Participant row is gone, or domain.ErrNotSignedUp is returned
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, activityID, email string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM participant WHERE activity_id = ? AND email = ?", activityID, email)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if n == 0 {
		return domain.ErrNotSignedUp
	}
	return nil
}
