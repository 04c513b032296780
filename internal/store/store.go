package store

import (
	"context"
	"time"

	"github.com/hyperengineering/nurture/internal/types"
)

// UserStore persists user aggregates. Each user is stored whole, as one
// JSON blob, and every write replaces the previous blob.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*types.User, error)
	PutUser(ctx context.Context, user *types.User) error
	DeleteUser(ctx context.Context, id string) error
	UserIDByPhone(ctx context.Context, phone string) (string, error)
}

// ChallengeStore records when a one-time code was last issued per phone.
type ChallengeStore interface {
	GetChallenge(ctx context.Context, phone string) (time.Time, error)
	PutChallenge(ctx context.Context, phone string, issuedAt time.Time) error
	DeleteChallenge(ctx context.Context, phone string) error
	SweepChallenges(ctx context.Context, issuedBefore time.Time) (int64, error)
}

// MomentStore persists captured memories.
type MomentStore interface {
	AddMoment(ctx context.Context, m *types.Moment) (*types.Moment, error)
	ListMoments(ctx context.Context, userID string, filter types.MomentType) ([]types.Moment, error)
	ToggleLoved(ctx context.Context, userID, id string) (*types.Moment, error)
	DeleteMoment(ctx context.Context, userID, id string) error
}

// CheckInStore persists daily check-ins, one per user per date.
type CheckInStore interface {
	SaveCheckIn(ctx context.Context, c *types.CheckIn) (*types.CheckIn, error)
	ListCheckIns(ctx context.Context, userID string, limit int) ([]types.CheckIn, error)
}

// Store is the full persistence contract of the service.
type Store interface {
	UserStore
	ChallengeStore
	MomentStore
	CheckInStore
	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
