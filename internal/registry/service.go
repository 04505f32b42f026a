package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"givechain.org/internal/chain"
)

// Service enforces validation and the ownership closure over the registry
// store. Every scoped operation answers ErrNotFound identically for "does
// not exist" and "not yours".
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

// CreatePaymentMethod registers a signing credential. Key material is only
// checked structurally; the ledger is never contacted here.
func (s *Service) CreatePaymentMethod(ctx context.Context, userID int64, methodType MethodType, keyMaterial string) (PaymentMethod, error) {
	if !methodType.Valid() {
		return PaymentMethod{}, ErrInvalidType
	}
	key, err := chain.ParsePrivateKey(keyMaterial)
	if err != nil {
		return PaymentMethod{}, ErrInvalidKeyMaterial
	}
	return s.store.CreateMethod(ctx, PaymentMethod{
		UserID:    userID,
		Type:      methodType,
		Key:       key,
		CreatedAt: s.now().UTC(),
	})
}

// ListPaymentMethods returns only the caller's methods.
func (s *Service) ListPaymentMethods(ctx context.Context, userID int64) ([]PaymentMethod, error) {
	return s.store.MethodsByUser(ctx, userID)
}

// GetPaymentMethod returns an owned method or ErrNotFound.
func (s *Service) GetPaymentMethod(ctx context.Context, userID, id int64) (PaymentMethod, error) {
	return s.store.MethodByID(ctx, userID, id)
}

// DeletePaymentMethod removes an owned method. A second delete of the same
// id fails with ErrNotFound; deletion is not idempotent.
func (s *Service) DeletePaymentMethod(ctx context.Context, userID, id int64) error {
	return s.store.DeleteMethod(ctx, userID, id)
}

// CreateFoundation registers a global donation recipient. No ownership
// applies; callers sit behind an administrative trust boundary.
func (s *Service) CreateFoundation(ctx context.Context, name, description, paymentAddress string) (Foundation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Foundation{}, ErrInvalidInput
	}
	if !chain.IsValidAddress(paymentAddress) {
		return Foundation{}, ErrInvalidAddress
	}
	return s.store.CreateFoundation(ctx, Foundation{
		Name:           name,
		Description:    description,
		PaymentAddress: paymentAddress,
		CreatedAt:      s.now().UTC(),
	})
}

// ListFoundations returns all foundations.
func (s *Service) ListFoundations(ctx context.Context) ([]Foundation, error) {
	return s.store.Foundations(ctx)
}

// GetFoundation returns a foundation by id.
func (s *Service) GetFoundation(ctx context.Context, id int64) (Foundation, error) {
	return s.store.FoundationByID(ctx, id)
}

// CreatePaymentRule binds an owned method to an existing foundation with a
// positive ether amount.
func (s *Service) CreatePaymentRule(ctx context.Context, userID, methodID, foundationID int64, amount string) (PaymentRule, error) {
	// Existence is checked before the amount so callers learn about a
	// missing foundation or method first. The store re-checks both inside
	// its own transaction.
	if _, err := s.store.FoundationByID(ctx, foundationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return PaymentRule{}, ErrFoundationNotFound
		}
		return PaymentRule{}, err
	}
	if _, err := s.store.MethodByID(ctx, userID, methodID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return PaymentRule{}, ErrPaymentMethodNotFound
		}
		return PaymentRule{}, err
	}
	if _, err := chain.EtherToWei(amount); err != nil {
		return PaymentRule{}, ErrInvalidAmount
	}
	return s.store.CreateRule(ctx, userID, PaymentRule{
		PaymentMethodID: methodID,
		FoundationID:    foundationID,
		Amount:          amount,
		CreatedAt:       s.now().UTC(),
	})
}

// ListPaymentRules returns rules whose ownership closure ends at userID.
func (s *Service) ListPaymentRules(ctx context.Context, userID int64) ([]PaymentRule, error) {
	return s.store.RulesByUser(ctx, userID)
}

// GetPaymentRule returns an owned rule or ErrNotFound.
func (s *Service) GetPaymentRule(ctx context.Context, userID, id int64) (PaymentRule, error) {
	return s.store.RuleByID(ctx, userID, id)
}

// DeletePaymentRule removes an owned rule; same non-idempotent semantics as
// method deletion.
func (s *Service) DeletePaymentRule(ctx context.Context, userID, id int64) error {
	return s.store.DeleteRule(ctx, userID, id)
}

// BelongsToUser is the explicit authorization predicate: does the rule's
// ownership closure terminate at userID?
func (s *Service) BelongsToUser(ctx context.Context, ruleID, userID int64) (bool, error) {
	owner, err := s.store.RuleOwner(ctx, ruleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return owner == userID, nil
}

// ResolveRule loads a rule with its method and foundation, scoped through
// the ownership closure. Triggering works from this snapshot.
func (s *Service) ResolveRule(ctx context.Context, userID, ruleID int64) (RuleResolution, error) {
	rule, err := s.store.RuleByID(ctx, userID, ruleID)
	if err != nil {
		return RuleResolution{}, err
	}
	method, err := s.store.MethodByID(ctx, userID, rule.PaymentMethodID)
	if err != nil {
		return RuleResolution{}, err
	}
	foundation, err := s.store.FoundationByID(ctx, rule.FoundationID)
	if err != nil {
		return RuleResolution{}, err
	}
	return RuleResolution{Rule: rule, Method: method, Foundation: foundation}, nil
}
