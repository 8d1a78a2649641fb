package menu

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// State of a Listing for one page load.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Source yields the full item list, newest first.
type Source interface {
	List(ctx context.Context) ([]Item, error)
}

type SourceFunc func(ctx context.Context) ([]Item, error)

func (f SourceFunc) List(ctx context.Context) ([]Item, error) { return f(ctx) }

var ErrNotLoaded = errors.New("listing not loaded")

// Listing is the faceted, paginated menu for one page load. It fetches once;
// an error is terminal for that load.
type Listing struct {
	pageSize int
	log      *zap.Logger

	state    State
	err      error
	items    []Item
	category Category
	page     int
}

func NewListing(pageSize int, log *zap.Logger) *Listing {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listing{
		pageSize: pageSize,
		log:      log,
		state:    StateLoading,
		category: All,
		page:     1,
	}
}

// Load performs the fetch. On success the result is written to cache (if
// any); a failed fetch leaves the cache alone so older snapshots stay usable.
func (l *Listing) Load(ctx context.Context, src Source, cache *Cache) error {
	if l.state != StateLoading {
		return errors.Errorf("listing already %s", l.state)
	}

	items, err := src.List(ctx)
	if err != nil {
		l.state = StateError
		l.err = err
		return errors.Wrap(err, "load menu")
	}

	l.items = items
	l.state = StateLoaded

	if cache != nil {
		if err := cache.Save(ctx, items); err != nil {
			l.log.Warn("item cache write failed", zap.Error(err))
		}
	}
	return nil
}

func (l *Listing) State() State { return l.state }

func (l *Listing) Err() error { return l.err }

func (l *Listing) Items() []Item { return l.items }

func (l *Listing) Category() Category { return l.category }

func (l *Listing) Page() int { return l.page }

// Select changes the active filter. The page always goes back to 1, even if
// the category did not change.
func (l *Listing) Select(c Category) {
	l.category = c
	l.page = 1
}

// SetPage moves within the current filter.
func (l *Listing) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	l.page = p
}

func (l *Listing) Facets() []Category {
	if l.state != StateLoaded {
		return []Category{All}
	}
	return Facets(l.items)
}

func (l *Listing) Filtered() []Item {
	if l.state != StateLoaded {
		return []Item{}
	}
	return Filter(l.items, l.category)
}

func (l *Listing) TotalPages() int {
	return TotalPages(len(l.Filtered()), l.pageSize)
}

func (l *Listing) CurrentItems() []Item {
	return Paginate(l.Filtered(), l.page, l.pageSize)
}

// View is a snapshot of what the menu page renders.
type View struct {
	State         string     `json:"state"`
	Facets        []Category `json:"facets"`
	Category      Category   `json:"category"`
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
	TotalPages    int        `json:"total_pages"`
	FilteredCount int        `json:"filtered_count"`
	Items         []Item     `json:"items"`
}

func (l *Listing) View() View {
	filtered := l.Filtered()
	return View{
		State:         l.state.String(),
		Facets:        l.Facets(),
		Category:      l.category,
		Page:          l.page,
		PageSize:      l.pageSize,
		TotalPages:    TotalPages(len(filtered), l.pageSize),
		FilteredCount: len(filtered),
		Items:         Paginate(filtered, l.page, l.pageSize),
	}
}
