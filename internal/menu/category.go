package menu

import "strings"

// Category is a facet value derived from an item's primary tag.
type Category string

const (
	// All matches every item.
	All Category = "all"
	// Uncategorized is the bucket for items without a primary tag.
	Uncategorized Category = "other"
)

func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	if s == "" {
		return All
	}
	return Category(s)
}

func CategoryOf(it Item) Category {
	t := strings.TrimSpace(it.Type)
	if t == "" {
		return Uncategorized
	}
	return Category(t)
}

func (c Category) Matches(it Item) bool {
	if c.is(All) {
		return true
	}
	return CategoryOf(it).is(c)
}

func (c Category) is(other Category) bool {
	return strings.EqualFold(string(c), string(other))
}

// Label is the display form: first letter upper-cased.
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Facets lists All followed by every distinct category in the order it first
// appears in items.
func Facets(items []Item) []Category {
	out := []Category{All}
	for _, it := range items {
		c := CategoryOf(it)
		seen := false
		for _, f := range out {
			if f.is(c) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, c)
		}
	}
	return out
}

func Filter(items []Item, c Category) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if c.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
