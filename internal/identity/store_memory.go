package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memRecord struct {
	user User
	hash []byte
}

// MemRegistry keeps users in memory for the lifetime of the process.
// A single lock covers the whole record map.
type MemRegistry struct {
	mu     sync.RWMutex
	byName map[string]memRecord
	valid  UsernameRule
}

func NewMemRegistry() *MemRegistry {
	return NewMemRegistryWithRule(DefaultUsernameRule)
}

func NewMemRegistryWithRule(rule UsernameRule) *MemRegistry {
	return &MemRegistry{
		byName: make(map[string]memRecord),
		valid:  rule,
	}
}

func (s *MemRegistry) Create(ctx context.Context, username, password string) (User, error) {
	if !s.valid(username) {
		return User{}, ErrInvalidUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[username]; ok {
		return User{}, ErrUsernameTaken
	}

	u := User{ID: "u_" + uuid.NewString(), Name: username}
	s.byName[username] = memRecord{user: u, hash: hash}
	return u, nil
}

func (s *MemRegistry) Verify(ctx context.Context, username, password string) (User, error) {
	s.mu.RLock()
	rec, ok := s.byName[username]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return rec.user, nil
}

func (s *MemRegistry) Exists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[username]
	return ok, nil
}

func (s *MemRegistry) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

func (s *MemRegistry) Ping(ctx context.Context) error { return nil }
