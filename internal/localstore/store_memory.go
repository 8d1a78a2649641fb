package localstore

import (
	"context"
	"slices"
	"sync"
	"time"
)

type memSession struct {
	items   map[string][]byte
	touched time.Time
}

type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]*memSession
	now      func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]*memSession), now: time.Now}
}

func (s *MemStore) Session(id string) Storage {
	return sessionStorage{id: id, store: s}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) Expire(_ context.Context, cutoff time.Time, keep []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) && !slices.Contains(keep, id) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (s *MemStore) get(_ context.Context, session, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[session]
	if !ok {
		return nil, false, nil
	}
	v, ok := sess.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemStore) set(_ context.Context, session, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[session]
	if !ok {
		sess = &memSession{items: make(map[string][]byte)}
		s.sessions[session] = sess
	}
	sess.items[key] = append([]byte(nil), value...)
	sess.touched = s.now()
	return nil
}

func (s *MemStore) remove(_ context.Context, session, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[session]; ok {
		delete(sess.items, key)
		sess.touched = s.now()
	}
	return nil
}
