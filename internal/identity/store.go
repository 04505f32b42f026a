package identity

import (
	"context"
	"time"
)

// Store describes persistence for users and tokens.
type Store interface {
	// CreateUser inserts a user, assigning its id. ErrConflict when the
	// name is taken.
	CreateUser(ctx context.Context, name, passwordHash string, at time.Time) (User, error)
	UserByName(ctx context.Context, name string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)

	// CreateToken inserts an active token, assigning its id.
	CreateToken(ctx context.Context, userID int64, value string, at time.Time) (Token, error)
	// TokenByValue returns the token row regardless of activation state.
	TokenByValue(ctx context.Context, value string) (Token, error)
	// DeactivateToken flips Active to false. ErrNotFound when no such
	// token exists; deactivating an inactive token is not an error.
	DeactivateToken(ctx context.Context, value string) error
}
