package identity

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-process Store used for tests and DSN-less development.
type MemStore struct {
	mu         sync.RWMutex
	users      map[int64]User
	byName     map[string]int64
	tokens     map[string]Token
	nextUserID int64
	nextTokID  int64
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:  make(map[int64]User),
		byName: make(map[string]int64),
		tokens: make(map[string]Token),
	}
}

func (s *MemStore) CreateUser(ctx context.Context, name, passwordHash string, at time.Time) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; exists {
		return User{}, ErrConflict
	}
	s.nextUserID++
	user := User{ID: s.nextUserID, Name: name, PasswordHash: passwordHash, CreatedAt: at}
	s.users[user.ID] = user
	s.byName[name] = user.ID
	return user, nil
}

func (s *MemStore) UserByName(ctx context.Context, name string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemStore) UserByID(ctx context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemStore) CreateToken(ctx context.Context, userID int64, value string, at time.Time) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return Token{}, ErrNotFound
	}
	s.nextTokID++
	token := Token{ID: s.nextTokID, UserID: userID, Value: value, CreatedAt: at, Active: true}
	s.tokens[value] = token
	return token, nil
}

func (s *MemStore) TokenByValue(ctx context.Context, value string) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[value]
	if !ok {
		return Token{}, ErrNotFound
	}
	return token, nil
}

func (s *MemStore) DeactivateToken(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return ErrNotFound
	}
	token.Active = false
	s.tokens[value] = token
	return nil
}
