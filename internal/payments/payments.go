// Package payments records executed charitable payments and serves the
// per-user payment history. A row exists only for submissions the chain
// node accepted; rejected or unreachable attempts leave no trace here.
package payments

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("payments: not found")
	ErrRuleNotFound = errors.New("payments: payment rule not found")
)

// Payment is one executed transfer. TransactionHash is the hash returned
// by the chain node at submission time, recorded verbatim.
type Payment struct {
	ID              int64     `json:"id"`
	PaymentRuleID   int64     `json:"payment_rule_id"`
	TransactionHash string    `json:"transaction_hash"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store persists payment records. ListByUser walks the ownership closure
// (payment -> rule -> method -> user) and returns rows oldest first.
type Store interface {
	Create(ctx context.Context, p Payment) (Payment, error)
	ListByUser(ctx context.Context, userID int64) ([]Payment, error)
}

type Option func(*Service)

func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores the fact that a transaction for ruleID was accepted by
// the node under txHash.
func (s *Service) Record(ctx context.Context, ruleID int64, txHash string) (Payment, error) {
	p := Payment{
		PaymentRuleID:   ruleID,
		TransactionHash: txHash,
		CreatedAt:       s.now().UTC(),
	}
	return s.store.Create(ctx, p)
}

// History returns every payment executed under the user's rules, oldest
// first. A user with no payments gets an empty slice, not an error.
func (s *Service) History(ctx context.Context, userID int64) ([]Payment, error) {
	return s.store.ListByUser(ctx, userID)
}
