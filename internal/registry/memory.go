package registry

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-process Store used for tests and DSN-less development.
// One mutex guards every mutation, mirroring the single-transaction
// atomicity of the Postgres implementation.
type MemStore struct {
	mu          sync.RWMutex
	methods     map[int64]PaymentMethod
	foundations map[int64]Foundation
	rules       map[int64]PaymentRule
	nextMethod  int64
	nextFdn     int64
	nextRule    int64
	ruleInUse   func(ctx context.Context, ruleID int64) (bool, error)
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		methods:     make(map[int64]PaymentMethod),
		foundations: make(map[int64]Foundation),
		rules:       make(map[int64]PaymentRule),
	}
}

// SetRuleInUse installs the predicate DeleteRule consults before removing
// a rule, mirroring the payments table's on delete restrict foreign key.
// The payment store supplies it after both stores are constructed.
func (s *MemStore) SetRuleInUse(fn func(ctx context.Context, ruleID int64) (bool, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ruleInUse = fn
}

func (s *MemStore) CreateMethod(ctx context.Context, m PaymentMethod) (PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMethod++
	m.ID = s.nextMethod
	s.methods[m.ID] = m
	return m, nil
}

func (s *MemStore) MethodsByUser(ctx context.Context, userID int64) ([]PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PaymentMethod
	for _, m := range s.methods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) MethodByID(ctx context.Context, userID, id int64) (PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.methods[id]
	if !ok || m.UserID != userID {
		return PaymentMethod{}, ErrNotFound
	}
	return m, nil
}

func (s *MemStore) DeleteMethod(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok || m.UserID != userID {
		return ErrNotFound
	}
	for _, r := range s.rules {
		if r.PaymentMethodID == id {
			return ErrInUse
		}
	}
	delete(s.methods, id)
	return nil
}

func (s *MemStore) CreateFoundation(ctx context.Context, f Foundation) (Foundation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFdn++
	f.ID = s.nextFdn
	s.foundations[f.ID] = f
	return f, nil
}

func (s *MemStore) Foundations(ctx context.Context) ([]Foundation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Foundation, 0, len(s.foundations))
	for _, f := range s.foundations {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) FoundationByID(ctx context.Context, id int64) (Foundation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.foundations[id]
	if !ok {
		return Foundation{}, ErrNotFound
	}
	return f, nil
}

func (s *MemStore) CreateRule(ctx context.Context, userID int64, r PaymentRule) (PaymentRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.foundations[r.FoundationID]; !ok {
		return PaymentRule{}, ErrFoundationNotFound
	}
	m, ok := s.methods[r.PaymentMethodID]
	if !ok || m.UserID != userID {
		return PaymentRule{}, ErrPaymentMethodNotFound
	}
	s.nextRule++
	r.ID = s.nextRule
	s.rules[r.ID] = r
	return r, nil
}

func (s *MemStore) RulesByUser(ctx context.Context, userID int64) ([]PaymentRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PaymentRule
	for _, r := range s.rules {
		if m, ok := s.methods[r.PaymentMethodID]; ok && m.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) RuleByID(ctx context.Context, userID, id int64) (PaymentRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return PaymentRule{}, ErrNotFound
	}
	m, ok := s.methods[r.PaymentMethodID]
	if !ok || m.UserID != userID {
		return PaymentRule{}, ErrNotFound
	}
	return r, nil
}

func (s *MemStore) DeleteRule(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return ErrNotFound
	}
	m, ok := s.methods[r.PaymentMethodID]
	if !ok || m.UserID != userID {
		return ErrNotFound
	}
	if s.ruleInUse != nil {
		used, err := s.ruleInUse(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return ErrInUse
		}
	}
	delete(s.rules, id)
	return nil
}

func (s *MemStore) RuleOwner(ctx context.Context, ruleID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return 0, ErrNotFound
	}
	m, ok := s.methods[r.PaymentMethodID]
	if !ok {
		return 0, ErrNotFound
	}
	return m.UserID, nil
}
