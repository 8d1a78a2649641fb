// Package cart keeps a browser session's shopping cart: item id to quantity,
// mirrored to the session's local storage on every change.
package cart

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"FoodZone/internal/localstore"
	"FoodZone/internal/menu"
)

// StorageKey holds the serialized cart in a session's storage.
const StorageKey = "foodzone-cart"

// MaxQuantity caps one line of the cart. A single change is never larger
// than that either.
const MaxQuantity = 99

// Entries maps item id to a quantity between 1 and MaxQuantity.
type Entries map[string]int

func (e Entries) clone() Entries {
	out := make(Entries, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ValidDelta reports whether delta is a change a single control may ask for.
func ValidDelta(delta int) bool {
	return delta >= -MaxQuantity && delta <= MaxQuantity
}

// step adds delta to id's current quantity without overflowing and caps the
// result at MaxQuantity.
func step(e Entries, id string, delta int) int {
	delta = max(min(delta, MaxQuantity), -MaxQuantity)
	return min(e[id]+delta, MaxQuantity)
}

// Apply adds delta to id's quantity. It reports false and returns e
// unchanged when the result would be negative; a result of zero removes id.
// Quantities stop at MaxQuantity.
func Apply(e Entries, id string, delta int) (Entries, bool) {
	next := step(e, id, delta)
	if next < 0 || (next == MaxQuantity && e[id] == MaxQuantity) {
		return e, false
	}

	out := e.clone()
	if next == 0 {
		delete(out, id)
	} else {
		out[id] = next
	}
	return out, true
}

// ApplyClamped is Apply with the result floored at zero, so an oversized
// decrement removes the item instead of being ignored.
func ApplyClamped(e Entries, id string, delta int) Entries {
	next := max(step(e, id, delta), 0)

	out := e.clone()
	if next == 0 {
		delete(out, id)
	} else {
		out[id] = next
	}
	return out
}

// Store owns one session's cart. It is not safe for concurrent use; callers
// serialize access per session.
type Store struct {
	storage localstore.Storage
	log     *zap.Logger
	entries Entries
}

// Load reads the persisted cart. Anything unreadable yields an empty cart:
// that is always a safe state to show.
func Load(ctx context.Context, storage localstore.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{storage: storage, log: log, entries: Entries{}}

	raw, ok, err := storage.GetItem(ctx, StorageKey)
	if err != nil {
		log.Warn("cart read failed, starting empty", zap.Error(err))
		return s
	}
	if !ok {
		return s
	}

	var stored map[string]int
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.Debug("cart snapshot corrupt, starting empty", zap.Error(err))
		return s
	}
	for id, qty := range stored {
		if id != "" && qty > 0 {
			s.entries[id] = min(qty, MaxQuantity)
		}
	}
	return s
}

// SetQuantity is the menu card control: a change that would go below zero is
// ignored (rapid double clicks on "minus").
func (s *Store) SetQuantity(ctx context.Context, id string, delta int) (bool, error) {
	next, ok := Apply(s.entries, id, delta)
	if !ok {
		return false, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateQuantity is the cart page control: decrements past zero remove the
// item.
func (s *Store) UpdateQuantity(ctx context.Context, id string, delta int) error {
	return s.commit(ctx, ApplyClamped(s.entries, id, delta))
}

func (s *Store) RemoveItem(ctx context.Context, id string) error {
	next := s.entries.clone()
	delete(next, id)
	return s.commit(ctx, next)
}

// Clear deletes the persisted cart altogether.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.RemoveItem(ctx, StorageKey); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	s.entries = Entries{}
	return nil
}

// commit writes next through to storage and only then adopts it.
func (s *Store) commit(ctx context.Context, next Entries) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.storage.SetItem(ctx, StorageKey, raw); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	s.entries = next
	return nil
}

func (s *Store) Quantity(id string) int { return s.entries[id] }

func (s *Store) IsEmpty() bool { return len(s.entries) == 0 }

// Entries returns a copy of the cart.
func (s *Store) Entries() Entries { return s.entries.clone() }

// IDs lists the cart's item ids in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ItemCount is the total number of units, for the cart badge.
func (s *Store) ItemCount() int {
	n := 0
	for _, q := range s.entries {
		n += q
	}
	return n
}

// Total sums quantity times price over items that are in the cart. Items the
// list does not know, and unknown prices, contribute nothing.
func (s *Store) Total(items []menu.Item) decimal.Decimal {
	return Total(s.entries, items)
}

func Total(e Entries, items []menu.Item) decimal.Decimal {
	total := decimal.Zero
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}

		qty, ok := e[it.ID]
		if !ok {
			continue
		}
		total = total.Add(it.Price.Value().Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}
