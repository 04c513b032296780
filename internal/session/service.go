// Package session implements the demo phone login, session tokens and
// the persisted user profile.
//
// Login is a placeholder: no code is ever sent and the only accepted
// code is DemoCode. It must not be mistaken for real authentication.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/nurture/internal/observability"
	"github.com/hyperengineering/nurture/internal/store"
	"github.com/hyperengineering/nurture/internal/types"
	"github.com/hyperengineering/nurture/internal/validation"
)

// DemoCode is the only verification code Login accepts.
const DemoCode = "1234"

// UserIDPrefix prefixes every generated user id.
const UserIDPrefix = "user_"

// Defaults applied by NewService to zero Options fields.
const (
	DefaultIssuer   = "nurture"
	DefaultTTL      = 30 * 24 * time.Hour
	DefaultCooldown = 60 * time.Second
)

// Store is the persistence the session service needs.
type Store interface {
	store.UserStore
	store.ChallengeStore
}

// Options configures a Service.
type Options struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration
	Cooldown   time.Duration
	LoginDelay time.Duration
	Now        func() time.Time
}

// Service owns logins, tokens and profile updates.
type Service struct {
	store Store
	opts  Options
}

// NewService creates a session service. The signing secret is required.
func NewService(st Store, opts Options) (*Service, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("session: signing secret is required")
	}
	if opts.Issuer == "" {
		opts.Issuer = DefaultIssuer
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: st, opts: opts}, nil
}

func (s *Service) now() time.Time { return s.opts.Now().UTC() }

// CodeRequest is the result of a successful RequestCode.
type CodeRequest struct {
	Phone      string `json:"phone"`
	ResendSecs int    `json:"resend_after_seconds"`
}

// RequestCode pretends to send a verification code to phone. A second
// request for the same phone within the cooldown fails with a
// *CooldownError.
func (s *Service) RequestCode(ctx context.Context, phone string) (*CodeRequest, error) {
	phone = validation.NormalizePhone(phone)
	if err := validation.ValidatePhone("phone", phone); err != nil {
		return nil, inputError([]validation.ValidationError{*err})
	}

	now := s.now()
	issued, err := s.store.GetChallenge(ctx, phone)
	switch {
	case err == nil:
		if wait := issued.Add(s.opts.Cooldown).Sub(now); wait > 0 {
			return nil, &CooldownError{RetryAfter: wait}
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("get challenge: %w", err)
	}

	if err := s.store.PutChallenge(ctx, phone, now); err != nil {
		return nil, fmt.Errorf("put challenge: %w", err)
	}

	slog.Info("verification code requested",
		"component", "session",
		"action", "request_code",
	)
	return &CodeRequest{
		Phone:      phone,
		ResendSecs: int(s.opts.Cooldown / time.Second),
	}, nil
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User      *types.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Created   bool        `json:"created"`
}

// Login checks code against DemoCode after the configured delay, then
// loads or creates the user for phone and issues a session token.
func (s *Service) Login(ctx context.Context, phone, code string) (*LoginResult, error) {
	phone = validation.NormalizePhone(phone)
	if err := validation.ValidatePhone("phone", phone); err != nil {
		return nil, inputError([]validation.ValidationError{*err})
	}

	if s.opts.LoginDelay > 0 {
		t := time.NewTimer(s.opts.LoginDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	if code != DemoCode {
		observability.RecordLogin("rejected")
		slog.Info("login rejected",
			"component", "session",
			"action", "login",
		)
		return nil, &AuthenticationError{Phone: phone}
	}

	user, created, err := s.loadOrCreate(ctx, phone)
	if err != nil {
		observability.RecordLogin("error")
		return nil, err
	}

	if err := s.store.DeleteChallenge(ctx, phone); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("failed to clear challenge",
			"component", "session",
			"action", "login",
			"error", err,
		)
	}

	token, expires, err := s.Issue(user.ID)
	if err != nil {
		observability.RecordLogin("error")
		return nil, err
	}

	observability.RecordLogin("success")
	slog.Info("login succeeded",
		"component", "session",
		"action", "login",
		"user_id", user.ID,
		"created", created,
	)
	return &LoginResult{User: user, Token: token, ExpiresAt: expires, Created: created}, nil
}

func (s *Service) loadOrCreate(ctx context.Context, phone string) (*types.User, bool, error) {
	id, err := s.store.UserIDByPhone(ctx, phone)
	switch {
	case err == nil:
		user, err := s.store.GetUser(ctx, id)
		if err == nil {
			return user, false, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, fmt.Errorf("get user: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, fmt.Errorf("lookup phone: %w", err)
	}

	user := &types.User{
		ID:    UserIDPrefix + ulid.Make().String(),
		Phone: phone,
	}
	if err := s.store.PutUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

// Logout removes the persisted user. Tokens issued for the user stop
// resolving once the blob is gone.
func (s *Service) Logout(ctx context.Context, userID string) error {
	err := s.store.DeleteUser(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.Info("logged out",
		"component", "session",
		"action", "logout",
		"user_id", userID,
	)
	return nil
}

// Get loads the user.
func (s *Service) Get(ctx context.Context, userID string) (*types.User, error) {
	return s.store.GetUser(ctx, userID)
}

// Update merges patch into the stored user and persists the whole user.
func (s *Service) Update(ctx context.Context, userID string, patch ProfilePatch) (*types.User, error) {
	if err := inputError(patch.Validate()); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(u *types.User) { patch.Apply(u) })
}

// CompleteOnboarding marks onboarding as done.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string) (*types.User, error) {
	done := true
	return s.Update(ctx, userID, ProfilePatch{OnboardingCompleted: &done})
}

// ToggleMilestone flips membership of id in the completed milestones.
func (s *Service) ToggleMilestone(ctx context.Context, userID, id string) (*types.User, error) {
	return s.mutate(ctx, userID, func(u *types.User) {
		u.CompletedMilestones = toggle(u.CompletedMilestones, id)
	})
}

// ToggleEvent flips membership of id in the completed medical events.
func (s *Service) ToggleEvent(ctx context.Context, userID, id string) (*types.User, error) {
	return s.mutate(ctx, userID, func(u *types.User) {
		u.CompletedEvents = toggle(u.CompletedEvents, id)
	})
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(*types.User)) (*types.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	fn(user)
	if err := s.store.PutUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// toggle returns ids with id removed if present, appended otherwise.
func toggle(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}
