package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetChallenge returns when a code was last issued to phone.
func (s *SQLiteStore) GetChallenge(ctx context.Context, phone string) (time.Time, error) {
	var issuedAt string
	err := s.db.QueryRowContext(ctx, `SELECT issued_at FROM otp_challenges WHERE phone = ?`, phone).Scan(&issuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("read challenge: %w", err)
	}
	return parseTime(issuedAt), nil
}

// PutChallenge records that a code was issued to phone at issuedAt.
func (s *SQLiteStore) PutChallenge(ctx context.Context, phone string, issuedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO otp_challenges (phone, issued_at) VALUES (?, ?)
		ON CONFLICT(phone) DO UPDATE SET issued_at = excluded.issued_at
	`, phone, formatTime(issuedAt))
	if err != nil {
		return fmt.Errorf("write challenge: %w", err)
	}
	return nil
}

// DeleteChallenge forgets the challenge for phone. Missing rows are not an error.
func (s *SQLiteStore) DeleteChallenge(ctx context.Context, phone string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM otp_challenges WHERE phone = ?`, phone); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

// SweepChallenges deletes challenges issued before the cutoff and returns
// how many were removed.
func (s *SQLiteStore) SweepChallenges(ctx context.Context, issuedBefore time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE issued_at < ?`,
		formatTime(issuedBefore),
	)
	if err != nil {
		return 0, fmt.Errorf("sweep challenges: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}
