package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	Ping(ctx context.Context) error
	// List returns matching items, newest first.
	List(ctx context.Context, f ListFilter) ([]MenuItem, error)
	Get(ctx context.Context, id string) (MenuItem, bool, error)
	Create(ctx context.Context, it MenuItem) error
	Update(ctx context.Context, it MenuItem) error
	Delete(ctx context.Context, id string) error
}

// File is an uploaded image.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type FileStore interface {
	PutFile(ctx context.Context, f File) error
	GetFile(ctx context.Context, id string) (File, bool, error)
}
