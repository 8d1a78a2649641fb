package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu    sync.RWMutex
	items map[string]MenuItem
	files map[string]File
}

func NewMemStore() *MemStore {
	return &MemStore{
		items: map[string]MenuItem{},
		files: map[string]File{},
	}
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) List(_ context.Context, f ListFilter) ([]MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MenuItem, 0, len(s.items))
	for _, it := range s.items {
		if f.match(it) {
			out = append(out, it)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id string) (MenuItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	return it, ok, nil
}

func (s *MemStore) Create(_ context.Context, it MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[it.ID] = it
	return nil
}

func (s *MemStore) Update(_ context.Context, it MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[it.ID]; !ok {
		return ErrNotFound
	}
	s.items[it.ID] = it
	return nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemStore) PutFile(_ context.Context, f File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.Data = append([]byte(nil), f.Data...)
	s.files[f.ID] = f
	return nil
}

func (s *MemStore) GetFile(_ context.Context, id string) (File, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	return f, ok, nil
}
