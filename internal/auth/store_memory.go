package auth

import (
	"context"
	"sync"
	"time"
)

type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]User
	byID    map[string]string

	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func NewMemStore() *MemStore {
	return &MemStore{
		byEmail: make(map[string]User),
		byID:    make(map[string]string),
	}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Create(_ context.Context, nu NewUser) (User, error) {
	email := normalizeEmail(nu.Email)

	hash, err := hashPassword(nu.Password, s.Cost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return User{}, ErrEmailExists
	}

	u := User{
		ID:        nu.ID,
		Email:     email,
		Name:      nu.Name,
		Hash:      hash,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	s.byEmail[email] = u
	s.byID[u.ID] = email
	return u, nil
}

func (s *MemStore) Verify(_ context.Context, email, password string) (User, error) {
	s.mu.RLock()
	u, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := checkPassword(u, password); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *MemStore) GetByID(_ context.Context, id string) (User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.byID[id]
	if !ok {
		return User{}, false, nil
	}
	return s.byEmail[email], true, nil
}

func (s *MemStore) SetPassword(_ context.Context, id, password string) error {
	hash, err := hashPassword(password, s.Cost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u := s.byEmail[email]
	u.Hash = hash
	s.byEmail[email] = u
	return nil
}
