package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"FoodZone/internal/cart"
	"FoodZone/internal/menu"
)

// PriceSource returns authoritative item data for the given ids.
type PriceSource interface {
	GetMany(ctx context.Context, ids []string) ([]menu.Item, error)
}

type Line struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice menu.Price      `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ImageRef  string          `json:"-"`
	// Unresolved lines have no item data at all; they count as zero.
	Unresolved bool `json:"unresolved,omitempty"`
}

type Quote struct {
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	// Stale is set when prices came from the session's cached snapshot
	// because the catalog could not be reached.
	Stale bool `json:"stale,omitempty"`
}

func (q Quote) Empty() bool { return q.ItemCount == 0 }

// BuildQuote prices entries against items. Lines follow the order of items;
// ids the list does not know come last, sorted, as unresolved lines.
func BuildQuote(entries cart.Entries, items []menu.Item) Quote {
	q := Quote{Lines: []Line{}, Total: cart.Total(entries, items)}

	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		qty, ok := entries[it.ID]
		if !ok {
			continue
		}
		if _, dup := known[it.ID]; dup {
			continue
		}
		known[it.ID] = struct{}{}

		q.Lines = append(q.Lines, Line{
			ItemID:    it.ID,
			Name:      it.Name,
			Quantity:  qty,
			UnitPrice: it.Price,
			Subtotal:  it.Price.Value().Mul(decimal.NewFromInt(int64(qty))),
			ImageRef:  it.ImageURL,
		})
	}

	for _, id := range sortedIDs(entries) {
		if _, ok := known[id]; ok {
			continue
		}
		q.Lines = append(q.Lines, Line{
			ItemID:     id,
			Quantity:   entries[id],
			Subtotal:   decimal.Zero,
			Unresolved: true,
		})
	}

	for _, qty := range entries {
		q.ItemCount += qty
	}
	return q
}

// QuoteFor prices entries with the catalog's current data, falling back to
// the cached snapshot when the catalog fails.
func QuoteFor(ctx context.Context, entries cart.Entries, src PriceSource, cached []menu.Item, log *zap.Logger) Quote {
	if len(entries) == 0 {
		return BuildQuote(entries, nil)
	}

	items, err := src.GetMany(ctx, sortedIDs(entries))
	if err == nil {
		return BuildQuote(entries, items)
	}

	if log != nil {
		log.Warn("authoritative prices unavailable, using cached items", zap.Error(err))
	}
	q := BuildQuote(entries, cached)
	q.Stale = true
	return q
}
