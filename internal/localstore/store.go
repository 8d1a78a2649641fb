// Package localstore is the server-side stand-in for a browser's local
// storage: small string-keyed blobs, scoped to one browser session.
package localstore

import (
	"context"
	"time"
)

// Storage is one session's view: the getItem/setItem/removeItem triple.
type Storage interface {
	GetItem(ctx context.Context, key string) ([]byte, bool, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// Store hands out per-session Storage and manages the whole keyspace.
type Store interface {
	Session(id string) Storage
	// Expire drops sessions not written since the cutoff, except those in
	// keep, and reports how many rows went.
	Expire(ctx context.Context, cutoff time.Time, keep []string) (int, error)
	Ping(ctx context.Context) error
}

type sessionStorage struct {
	id    string
	store backend
}

type backend interface {
	get(ctx context.Context, session, key string) ([]byte, bool, error)
	set(ctx context.Context, session, key string, value []byte) error
	remove(ctx context.Context, session, key string) error
}

func (s sessionStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	return s.store.get(ctx, s.id, key)
}

func (s sessionStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return s.store.set(ctx, s.id, key, value)
}

func (s sessionStorage) RemoveItem(ctx context.Context, key string) error {
	return s.store.remove(ctx, s.id, key)
}
