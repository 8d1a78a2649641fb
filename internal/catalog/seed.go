package catalog

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Type        string  `yaml:"type"`
	Nation      string  `yaml:"nation"`
	Price       *string `yaml:"price"`
	ImageURL    string  `yaml:"image_url"`
}

// ParseSeed reads a YAML menu:
//
//	items:
//	  - name: Sticky Honey Roast
//	    description: Carrots and ham glazed with honey
//	    type: Main
//	    nation: Mondstadt
//	    price: 18.50
//
// Every item is validated like an API write. Items get fresh ids; later
// entries are newer.
func ParseSeed(r io.Reader, now time.Time) ([]MenuItem, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode seed")
	}

	out := make([]MenuItem, 0, len(f.Items))
	for i, si := range f.Items {
		in := ItemInput{
			Name:        &si.Name,
			Description: &si.Description,
			Type:        &si.Type,
			Nation:      &si.Nation,
			ImageURL:    &si.ImageURL,
		}
		if si.Price != nil {
			d, err := decimal.NewFromString(strings.TrimSpace(*si.Price))
			if err != nil {
				return nil, errors.Wrapf(err, "item %d: price", i)
			}
			in.Price = OptionalPrice{Set: true, Value: decimal.NewNullDecimal(d)}
		}

		ts := now.Add(time.Duration(i) * time.Millisecond).UTC()
		it := in.Apply(MenuItem{ID: "m_" + uuid.NewString(), CreatedAt: ts, UpdatedAt: ts})
		if errs := Validate(it); errs != nil {
			return nil, errors.Errorf("item %d (%q): invalid %v", i, si.Name, errs)
		}
		out = append(out, it)
	}
	return out, nil
}

// Seed stores items, stopping at the first failure.
func Seed(ctx context.Context, store Store, items []MenuItem) error {
	for _, it := range items {
		if err := store.Create(ctx, it); err != nil {
			return errors.Wrapf(err, "create %q", it.Name)
		}
	}
	return nil
}
