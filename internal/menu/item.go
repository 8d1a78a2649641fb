// Package menu is the customer-side view of the catalog: the item read
// model, category facets, filtering and pagination, the listing state
// machine, the per-session item cache and the HTTP client for the catalog.
package menu

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a menu item as the catalog serves it. Everything but ID and Name
// may be missing on legacy documents.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type,omitempty"`
	Nation      string    `json:"nation,omitempty"`
	Price       Price     `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Price is a non-negative amount that may be unknown. Unknown prices render
// as "N/A" and count as zero in totals.
type Price struct {
	Amount decimal.Decimal
	Valid  bool
}

func NewPrice(d decimal.Decimal) Price {
	if d.IsNegative() {
		return Price{}
	}
	return Price{Amount: d, Valid: true}
}

// PriceFromFloat is a convenience for literals and tests.
func PriceFromFloat(f float64) Price {
	return NewPrice(decimal.NewFromFloat(f))
}

// Value is the amount, or zero when the price is unknown.
func (p Price) Value() decimal.Decimal {
	if !p.Valid {
		return decimal.Zero
	}
	return p.Amount
}

func (p Price) String() string {
	if !p.Valid {
		return "N/A"
	}
	return p.Amount.StringFixed(2)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Amount.String()), nil
}

// UnmarshalJSON never fails: null, strings that are not numbers, negative
// values and other junk all decode to an unknown price.
func (p *Price) UnmarshalJSON(b []byte) error {
	*p = Price{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return nil
		}
		raw = s
	} else if !json.Valid(b) {
		return nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	*p = NewPrice(d)
	return nil
}
