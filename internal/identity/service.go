package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service provides account and bearer-token operations. Unknown names, bad
// passwords, and revoked tokens all fail the same way so callers cannot
// probe which accounts exist.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service backed by the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user and issues its first token, mirroring signup.
func (s *Service) Register(ctx context.Context, name, password string) (User, Token, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return User{}, Token{}, ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, Token{}, err
	}
	user, err := s.store.CreateUser(ctx, name, hash, s.now().UTC())
	if err != nil {
		return User{}, Token{}, err
	}
	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return User{}, Token{}, err
	}
	return user, token, nil
}

// Authenticate verifies credentials and returns the user.
func (s *Service) Authenticate(ctx context.Context, name, password string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return User{}, ErrUnauthenticated
	}
	user, err := s.store.UserByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUnauthenticated
		}
		return User{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrUnauthenticated
	}
	return user, nil
}

// IssueToken mints a fresh active token for the user.
func (s *Service) IssueToken(ctx context.Context, userID int64) (Token, error) {
	value := uuid.NewString()
	return s.store.CreateToken(ctx, userID, value, s.now().UTC())
}

// ResolveToken maps a bearer token to its owning user. Absent and revoked
// tokens are indistinguishable.
func (s *Service) ResolveToken(ctx context.Context, value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, ErrUnauthenticated
	}
	token, err := s.store.TokenByValue(ctx, value)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrUnauthenticated
		}
		return 0, err
	}
	if !token.Active {
		return 0, ErrUnauthenticated
	}
	return token.UserID, nil
}

// RevokeToken deactivates a token and reports whether it existed. The row
// is kept; tokens never transition back to active.
func (s *Service) RevokeToken(ctx context.Context, value string) (bool, error) {
	err := s.store.DeactivateToken(ctx, value)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
