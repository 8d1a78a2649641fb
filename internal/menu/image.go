package menu

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Placeholder replaces images that are missing or failed to load.
const Placeholder = "/static/placeholder.svg"

type PreviewOptions struct {
	Width   int
	Height  int
	Quality int
}

// ImageResolver turns an item's image reference into something a browser
// can load: absolute URLs pass through, asset ids become catalog previews.
type ImageResolver struct {
	BaseURL string
	Preview PreviewOptions
}

func (r ImageResolver) URL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}

	q := url.Values{}
	if r.Preview.Width > 0 {
		q.Set("width", strconv.Itoa(r.Preview.Width))
	}
	if r.Preview.Height > 0 {
		q.Set("height", strconv.Itoa(r.Preview.Height))
	}
	if r.Preview.Quality > 0 {
		q.Set("quality", strconv.Itoa(r.Preview.Quality))
	}

	u := strings.TrimRight(r.BaseURL, "/") + "/files/" + url.PathEscape(ref) + "/preview"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

type Image struct {
	URL         string `json:"url"`
	Placeholder bool   `json:"placeholder"`
}

// Resolve picks the image for it, falling back to the placeholder when there
// is no reference or the browser already reported it broken.
func (r ImageResolver) Resolve(it Item, broken *BrokenImages) Image {
	if broken != nil && broken.Has(it.ID) {
		return Image{URL: Placeholder, Placeholder: true}
	}
	u := r.URL(it.ImageURL)
	if u == "" {
		return Image{URL: Placeholder, Placeholder: true}
	}
	return Image{URL: u}
}

// BrokenImages remembers items whose image failed to load, so the fallback
// sticks instead of being retried on every render.
type BrokenImages struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewBrokenImages() *BrokenImages {
	return &BrokenImages{ids: make(map[string]struct{})}
}

func (b *BrokenImages) Mark(id string) {
	b.mu.Lock()
	b.ids[id] = struct{}{}
	b.mu.Unlock()
}

func (b *BrokenImages) Has(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ids[id]
	return ok
}
