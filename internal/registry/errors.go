package registry

import "errors"

var (
	// ErrNotFound covers both absent resources and resources owned by
	// someone else, so callers cannot probe for existence.
	ErrNotFound = errors.New("registry: not found")

	ErrFoundationNotFound    = errors.New("registry: foundation not found")
	ErrPaymentMethodNotFound = errors.New("registry: payment method not found")

	ErrInvalidAmount      = errors.New("registry: amount must be a positive decimal")
	ErrInvalidType        = errors.New("registry: unsupported payment method type")
	ErrInvalidKeyMaterial = errors.New("registry: invalid key material")
	ErrInvalidAddress     = errors.New("registry: invalid payment address")
	ErrInvalidInput       = errors.New("registry: invalid input")

	// ErrInUse marks a delete blocked by dependent rows (rules on a
	// method, payments on a rule).
	ErrInUse = errors.New("registry: resource still referenced")
)
