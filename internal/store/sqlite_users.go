package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperengineering/nurture/internal/types"
)

// GetUser loads the user blob for id.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*types.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidKey)
	}
	blob, err := getKV(ctx, s.db, UserKey(id))
	if err != nil {
		return nil, err
	}
	var user types.User
	if err := json.Unmarshal(blob, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}

// PutUser writes the whole user blob and points the phone index at it.
// A phone already indexed to a different user is rejected with ErrPhoneTaken.
func (s *SQLiteStore) PutUser(ctx context.Context, user *types.User) error {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidKey)
	}
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()

	// Drop a stale phone index if the user changed numbers.
	if prev, err := getKV(ctx, tx, UserKey(user.ID)); err == nil {
		var old types.User
		if json.Unmarshal(prev, &old) == nil && old.Phone != "" && old.Phone != user.Phone {
			if _, err := deleteKV(ctx, tx, PhoneKey(old.Phone)); err != nil {
				return err
			}
		}
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if user.Phone != "" {
		owner, err := getKV(ctx, tx, PhoneKey(user.Phone))
		switch {
		case err == nil && string(owner) != user.ID:
			return fmt.Errorf("%w: %s", ErrPhoneTaken, user.Phone)
		case err != nil && !errors.Is(err, ErrNotFound):
			return err
		}
		if err := putKV(ctx, tx, PhoneKey(user.Phone), []byte(user.ID), now); err != nil {
			return err
		}
	}

	if err := putKV(ctx, tx, UserKey(user.ID), blob, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// DeleteUser removes the user blob and its phone index entry.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	blob, err := getKV(ctx, tx, UserKey(id))
	if err != nil {
		return err
	}
	var user types.User
	if err := json.Unmarshal(blob, &user); err == nil && user.Phone != "" {
		if _, err := deleteKV(ctx, tx, PhoneKey(user.Phone)); err != nil {
			return err
		}
	}
	if _, err := deleteKV(ctx, tx, UserKey(id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UserIDByPhone resolves the user registered with phone.
func (s *SQLiteStore) UserIDByPhone(ctx context.Context, phone string) (string, error) {
	v, err := getKV(ctx, s.db, PhoneKey(phone))
	if err != nil {
		return "", err
	}
	return string(v), nil
}
