package identity

import "errors"

var (
	ErrNotFound        = errors.New("identity: not found")
	ErrConflict        = errors.New("identity: name already taken")
	ErrInvalidInput    = errors.New("identity: invalid input")
	ErrUnauthenticated = errors.New("identity: unauthenticated")
)
