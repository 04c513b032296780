package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperengineering/nurture/internal/types"
	"github.com/oklog/ulid/v2"
)

const momentColumns = `id, user_id, type, title, description, date, tags, loved, created_at`

// AddMoment stores a new memory. ID and CreatedAt are assigned here.
func (s *SQLiteStore) AddMoment(ctx context.Context, m *types.Moment) (*types.Moment, error) {
	out := *m
	out.ID = ulid.Make().String()
	out.CreatedAt = s.now()
	if out.Date.IsZero() {
		out.Date = out.CreatedAt
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	tags, err := json.Marshal(out.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO moments (`+momentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, out.ID, out.UserID, out.Type, out.Title, out.Description,
		formatTime(out.Date), string(tags), out.Loved, formatTime(out.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert moment: %w", err)
	}
	return &out, nil
}

// ListMoments returns a user's memories, newest first. An empty filter
// returns every type.
func (s *SQLiteStore) ListMoments(ctx context.Context, userID string, filter types.MomentType) ([]types.Moment, error) {
	query := `SELECT ` + momentColumns + ` FROM moments WHERE user_id = ?`
	args := []any{userID}
	if filter != "" {
		query += ` AND type = ?`
		args = append(args, filter)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query moments: %w", err)
	}
	defer rows.Close()

	moments := []types.Moment{}
	for rows.Next() {
		m, err := scanMoment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		moments = append(moments, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return moments, nil
}

// ToggleLoved flips the loved flag of one of the user's memories.
func (s *SQLiteStore) ToggleLoved(ctx context.Context, userID, id string) (*types.Moment, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE moments SET loved = 1 - loved WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("toggle loved: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+momentColumns+` FROM moments WHERE id = ? AND user_id = ?`, id, userID)
	m, err := scanMoment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}
	return m, nil
}

// DeleteMoment removes one of the user's memories.
func (s *SQLiteStore) DeleteMoment(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM moments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete moment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMoment(scanner interface{ Scan(...any) error }) (*types.Moment, error) {
	var m types.Moment
	var date, tags, createdAt string
	if err := scanner.Scan(&m.ID, &m.UserID, &m.Type, &m.Title, &m.Description, &date, &tags, &m.Loved, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("parse tags JSON: %w", err)
	}
	m.Date = parseTime(date)
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}

// SaveCheckIn stores the check-in for (user, date), replacing any earlier
// one for the same date. The stored row keeps its original ID.
func (s *SQLiteStore) SaveCheckIn(ctx context.Context, c *types.CheckIn) (*types.CheckIn, error) {
	out := *c
	out.ID = ulid.Make().String()
	out.CreatedAt = s.now()
	if out.Activities == nil {
		out.Activities = []string{}
	}
	acts, err := json.Marshal(out.Activities)
	if err != nil {
		return nil, fmt.Errorf("marshal activities: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO check_ins (id, user_id, date, mood, sleep, activities, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			mood = excluded.mood,
			sleep = excluded.sleep,
			activities = excluded.activities,
			created_at = excluded.created_at
		RETURNING id
	`, out.ID, out.UserID, out.Date, out.Mood, out.Sleep, string(acts), formatTime(out.CreatedAt))
	if err := row.Scan(&out.ID); err != nil {
		return nil, fmt.Errorf("upsert check-in: %w", err)
	}
	return &out, nil
}

// ListCheckIns returns a user's most recent check-ins, newest date first.
// A non-positive limit returns all of them.
func (s *SQLiteStore) ListCheckIns(ctx context.Context, userID string, limit int) ([]types.CheckIn, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, mood, sleep, activities, created_at
		FROM check_ins
		WHERE user_id = ?
		ORDER BY date DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}
	defer rows.Close()

	out := []types.CheckIn{}
	for rows.Next() {
		var c types.CheckIn
		var acts, createdAt string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Date, &c.Mood, &c.Sleep, &acts, &createdAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(acts), &c.Activities); err != nil {
			return nil, fmt.Errorf("parse activities JSON: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
