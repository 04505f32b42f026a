package payments

import (
	"context"
	"sync"
)

// OwnerFunc resolves the owning user of a payment rule. The memory store
// borrows it from the registry so ListByUser can walk the closure without
// duplicating rule state here.
type OwnerFunc func(ctx context.Context, ruleID int64) (int64, error)

// MemStore is an in-memory Store for tests and single-process runs.
type MemStore struct {
	owner OwnerFunc

	mu   sync.RWMutex
	rows []Payment
	next int64
}

var _ Store = (*MemStore)(nil)

func NewMemStore(owner OwnerFunc) *MemStore {
	return &MemStore{owner: owner, next: 1}
}

func (s *MemStore) Create(ctx context.Context, p Payment) (Payment, error) {
	if _, err := s.owner(ctx, p.PaymentRuleID); err != nil {
		return Payment{}, ErrRuleNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.next
	s.next++
	s.rows = append(s.rows, p)
	return p, nil
}

// HasForRule reports whether any payment references the rule. The registry
// memory store consults it before deleting a rule, standing in for the
// on delete restrict constraint the database enforces.
func (s *MemStore) HasForRule(ctx context.Context, ruleID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.rows {
		if p.PaymentRuleID == ruleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) ListByUser(ctx context.Context, userID int64) ([]Payment, error) {
	s.mu.RLock()
	rows := make([]Payment, len(s.rows))
	copy(rows, s.rows)
	s.mu.RUnlock()

	out := []Payment{}
	for _, p := range rows {
		owner, err := s.owner(ctx, p.PaymentRuleID)
		if err != nil {
			continue
		}
		if owner == userID {
			out = append(out, p)
		}
	}
	return out, nil
}
