package menu

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"FoodZone/internal/localstore"
)

// ItemCacheKey holds the last fetched item list in a session's storage.
const ItemCacheKey = "foodzone-items"

// Cache is the session's most recent item snapshot. It is never
// invalidated; readers accept that it may be stale.
type Cache struct {
	storage localstore.Storage
	log     *zap.Logger
}

func NewCache(storage localstore.Storage, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{storage: storage, log: log}
}

func (c *Cache) Save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode item cache")
	}
	return c.storage.SetItem(ctx, ItemCacheKey, raw)
}

// Load returns the cached items, or an empty list when nothing usable is
// stored.
func (c *Cache) Load(ctx context.Context) []Item {
	raw, ok, err := c.storage.GetItem(ctx, ItemCacheKey)
	if err != nil {
		c.log.Warn("item cache read failed", zap.Error(err))
		return []Item{}
	}
	if !ok {
		return []Item{}
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Debug("item cache corrupt, ignoring", zap.Error(err))
		return []Item{}
	}
	return items
}

func (c *Cache) Find(ctx context.Context, id string) (Item, bool) {
	for _, it := range c.Load(ctx) {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
