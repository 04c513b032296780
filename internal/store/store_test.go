package store

import (
	"context"
	"time"

	"github.com/hyperengineering/nurture/internal/types"
)

// mockStore is a compile-time check that the Store interface can be implemented.
type mockStore struct{}

var _ Store = (*mockStore)(nil)

func (m *mockStore) GetUser(ctx context.Context, id string) (*types.User, error) { return nil, nil }
func (m *mockStore) PutUser(ctx context.Context, user *types.User) error { return nil }
func (m *mockStore) DeleteUser(ctx context.Context, id string) error { return nil }
func (m *mockStore) UserIDByPhone(ctx context.Context, phone string) (string, error) {
	return "", nil
}
func (m *mockStore) GetChallenge(ctx context.Context, phone string) (time.Time, error) {
	return time.Time{}, nil
}
func (m *mockStore) PutChallenge(ctx context.Context, phone string, issuedAt time.Time) error {
	return nil
}
func (m *mockStore) DeleteChallenge(ctx context.Context, phone string) error { return nil }
func (m *mockStore) SweepChallenges(ctx context.Context, issuedBefore time.Time) (int64, error) {
	return 0, nil
}
func (m *mockStore) AddMoment(ctx context.Context, mo *types.Moment) (*types.Moment, error) {
	return nil, nil
}
func (m *mockStore) ListMoments(ctx context.Context, userID string, filter types.MomentType) ([]types.Moment, error) {
	return nil, nil
}
func (m *mockStore) ToggleLoved(ctx context.Context, userID, id string) (*types.Moment, error) {
	return nil, nil
}
func (m *mockStore) DeleteMoment(ctx context.Context, userID, id string) error { return nil }
func (m *mockStore) SaveCheckIn(ctx context.Context, c *types.CheckIn) (*types.CheckIn, error) {
	return nil, nil
}
func (m *mockStore) ListCheckIns(ctx context.Context, userID string, limit int) ([]types.CheckIn, error) {
	return nil, nil
}
func (m *mockStore) GetStats(ctx context.Context) (*types.StoreStats, error) { return nil, nil }
func (m *mockStore) Close() error { return nil }
