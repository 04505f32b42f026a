package registry

import "context"

// Store describes persistence for the resource registry. Scoped reads and
// deletes take the requesting user id and return ErrNotFound for rows that
// are absent or owned by someone else, without distinguishing the two.
// Implementations keep every mutation atomic, so a rule can never become
// visible while referencing a vanished method or foundation.
type Store interface {
	CreateMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error)
	MethodsByUser(ctx context.Context, userID int64) ([]PaymentMethod, error)
	MethodByID(ctx context.Context, userID, id int64) (PaymentMethod, error)
	// DeleteMethod removes an owned method. ErrInUse when rules still
	// reference it; a repeated delete returns ErrNotFound.
	DeleteMethod(ctx context.Context, userID, id int64) error

	CreateFoundation(ctx context.Context, f Foundation) (Foundation, error)
	Foundations(ctx context.Context) ([]Foundation, error)
	FoundationByID(ctx context.Context, id int64) (Foundation, error)

	// CreateRule validates the ownership closure and inserts in a single
	// transaction: ErrPaymentMethodNotFound when the method is absent or
	// not owned by userID, ErrFoundationNotFound when the foundation is
	// absent.
	CreateRule(ctx context.Context, userID int64, r PaymentRule) (PaymentRule, error)
	RulesByUser(ctx context.Context, userID int64) ([]PaymentRule, error)
	RuleByID(ctx context.Context, userID, id int64) (PaymentRule, error)
	DeleteRule(ctx context.Context, userID, id int64) error
	// RuleOwner resolves the closure to the owning user id.
	RuleOwner(ctx context.Context, ruleID int64) (int64, error)
}
