package catalog

import (
	"bytes"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is the stored form of a dish.
type MenuItem struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        string              `json:"type,omitempty"`
	Nation      string              `json:"nation,omitempty"`
	Price       decimal.NullDecimal `json:"price"`
	ImageURL    string              `json:"image_url,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

var (
	Types   = []string{"Entree", "Main", "Dessert"}
	Nations = []string{"Mondstadt", "Liyue", "Inazuma", "Sumeru", "Fontaine", "Natlan"}
)

const (
	maxNameLen        = 200
	maxDescriptionLen = 4000
)

// maxPrice is exclusive and matches the NUMERIC(10, 2) price column.
var maxPrice = decimal.New(1, 8)

// OptionalPrice tells an absent price field apart from an explicit null.
type OptionalPrice struct {
	Set   bool
	Value decimal.NullDecimal
}

func (p *OptionalPrice) UnmarshalJSON(b []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		p.Value = decimal.NullDecimal{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	p.Value = decimal.NewNullDecimal(d)
	return nil
}

// ItemInput is a create or patch request. Nil fields are left alone on patch.
type ItemInput struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Type        *string       `json:"type"`
	Nation      *string       `json:"nation"`
	Price       OptionalPrice `json:"price"`
	ImageURL    *string       `json:"image_url"`
}

// Apply copies the set fields of in onto it. Enumerated values are stored in
// their canonical spelling.
func (in ItemInput) Apply(it MenuItem) MenuItem {
	if in.Name != nil {
		it.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		it.Description = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		it.Type = canonical(Types, *in.Type)
	}
	if in.Nation != nil {
		it.Nation = canonical(Nations, *in.Nation)
	}
	if in.Price.Set {
		it.Price = in.Price.Value
	}
	if in.ImageURL != nil {
		it.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	return it
}

// Validate returns field errors, or nil when it can be stored.
func Validate(it MenuItem) map[string]string {
	errs := map[string]string{}

	switch {
	case it.Name == "":
		errs["name"] = "required"
	case len(it.Name) > maxNameLen:
		errs["name"] = "too long"
	}
	switch {
	case it.Description == "":
		errs["description"] = "required"
	case len(it.Description) > maxDescriptionLen:
		errs["description"] = "too long"
	}
	switch {
	case !it.Price.Valid:
	case !it.Price.Decimal.IsPositive():
		errs["price"] = "must be greater than 0"
	case !it.Price.Decimal.LessThan(maxPrice):
		errs["price"] = "must be less than " + maxPrice.String()
	}
	if it.Type != "" && !contains(Types, it.Type) {
		errs["type"] = "must be one of " + strings.Join(Types, ", ")
	}
	if it.Nation != "" && !contains(Nations, it.Nation) {
		errs["nation"] = "must be one of " + strings.Join(Nations, ", ")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func canonical(set []string, v string) string {
	v = strings.TrimSpace(v)
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return s
		}
	}
	return v
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ListFilter narrows List. Zero value lists everything.
type ListFilter struct {
	// Query matches names case-insensitively as a substring.
	Query string
	IDs   []string
}

func (f ListFilter) match(it MenuItem) bool {
	if q := strings.TrimSpace(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(it.Name), strings.ToLower(q)) {
		return false
	}
	if len(f.IDs) > 0 && !contains(f.IDs, it.ID) {
		return false
	}
	return true
}
