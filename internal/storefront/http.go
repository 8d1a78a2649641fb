package storefront

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"FoodZone/internal/cart"
	"FoodZone/internal/checkout"
	"FoodZone/internal/localstore"
	"FoodZone/internal/menu"
	"FoodZone/pkg/kit"
)

type Server struct {
	Storage  localstore.Store
	Catalog  *menu.Client
	Images   menu.ImageResolver
	Sessions *Sessions
	PageSize int
	Log      *zap.Logger

	SecureCookies   bool
	CheckoutLimiter *kit.IPRateLimiter

	metrics *Metrics
}

type deltaReq struct {
	Delta int `json:"delta"`
}

func decodeDelta(w http.ResponseWriter, r *http.Request, req *deltaReq) bool {
	if err := kit.DecodeJSON(w, r, req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return false
	}
	if !cart.ValidDelta(req.Delta) {
		kit.WriteError(w, r, http.StatusBadRequest, "delta out of range", map[string]int{
			"min": -cart.MaxQuantity,
			"max": cart.MaxQuantity,
		})
		return false
	}
	return true
}

// itemView is a menu card: the item plus everything the page derives from
// the session (image fallback, quantity in cart).
type itemView struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Type         string        `json:"type"`
	Nation       string        `json:"nation"`
	Category     menu.Category `json:"category"`
	Price        menu.Price    `json:"price"`
	PriceLabel   string        `json:"price_label"`
	Image        menu.Image    `json:"image"`
	Quantity     int           `json:"quantity"`
	CanDecrement bool          `json:"can_decrement"`
}

type cartSummary struct {
	ItemCount int  `json:"item_count"`
	Empty     bool `json:"empty"`
}

type menuResponse struct {
	menu.View
	Items []itemView  `json:"items"`
	Query string      `json:"query,omitempty"`
	Cart  cartSummary `json:"cart"`
}

type quantityResponse struct {
	ID       string      `json:"id"`
	Changed  bool        `json:"changed"`
	Quantity int         `json:"quantity"`
	Cart     cartSummary `json:"cart"`
}

type cartLine struct {
	checkout.Line
	PriceLabel string     `json:"price_label"`
	Image      menu.Image `json:"image"`
}

type cartResponse struct {
	Lines     []cartLine `json:"lines"`
	Total     string     `json:"total"`
	ItemCount int        `json:"item_count"`
	Empty     bool       `json:"empty"`
	Stale     bool       `json:"stale,omitempty"`
}

func (s *Server) MenuHandler() http.HandlerFunc           { return s.menu }
func (s *Server) ItemHandler() http.HandlerFunc           { return s.item }
func (s *Server) SetQuantityHandler() http.HandlerFunc    { return s.setQuantity }
func (s *Server) ImageErrorHandler() http.HandlerFunc     { return s.imageError }
func (s *Server) CartHandler() http.HandlerFunc           { return s.cart }
func (s *Server) UpdateQuantityHandler() http.HandlerFunc { return s.updateQuantity }
func (s *Server) RemoveItemHandler() http.HandlerFunc     { return s.removeItem }
func (s *Server) ClearCartHandler() http.HandlerFunc      { return s.clearCart }
func (s *Server) CheckoutStatusHandler() http.HandlerFunc { return s.checkoutStatus }
func (s *Server) CheckoutHandler() http.HandlerFunc       { return s.checkout }

func (s *Server) storage(ctx context.Context) localstore.Storage {
	return s.Storage.Session(sessionID(ctx))
}

func (s *Server) session(ctx context.Context) *session {
	return s.Sessions.get(sessionID(ctx))
}

func (s *Server) loadCart(ctx context.Context) *cart.Store {
	return cart.Load(ctx, s.storage(ctx), s.Log)
}

func (s *Server) menu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		src   menu.Source = s.Catalog
		cache             = menu.NewCache(s.storage(ctx), s.Log)
	)
	if q != "" {
		// A search result is a subset; it must not replace the cached menu.
		src, cache = menu.SearchSource(s.Catalog, q), nil
	}

	l := menu.NewListing(s.PageSize, s.Log)
	if err := l.Load(ctx, src, cache); err != nil {
		s.writeCatalogError(w, r, err)
		return
	}

	l.Select(menu.ParseCategory(r.URL.Query().Get("category")))
	l.SetPage(pageParam(r))

	sess := s.session(ctx)
	c := s.loadCart(ctx)

	view := l.View()
	cards := make([]itemView, 0, len(view.Items))
	for _, it := range view.Items {
		cards = append(cards, s.card(it, c, sess.broken))
	}

	kit.WriteJSON(w, http.StatusOK, menuResponse{
		View:  view,
		Items: cards,
		Query: q,
		Cart:  summarize(c),
	})
}

func (s *Server) item(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	it, ok := menu.NewCache(s.storage(ctx), s.Log).Find(ctx, id)
	if !ok {
		var err error
		it, err = s.Catalog.Get(ctx, id)
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
	}

	kit.WriteJSON(w, http.StatusOK, s.card(it, s.loadCart(ctx), s.session(ctx).broken))
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req deltaReq
	if !decodeDelta(w, r, &req) {
		return
	}

	ctx := r.Context()
	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	c := s.loadCart(ctx)
	changed, err := c.SetQuantity(ctx, id, req.Delta)
	if err != nil {
		s.writeCartError(w, r, err)
		return
	}
	if changed {
		s.metrics.cartMutation("set_quantity")
	}

	kit.WriteJSON(w, http.StatusOK, quantityResponse{
		ID:       id,
		Changed:  changed,
		Quantity: c.Quantity(id),
		Cart:     summarize(c),
	})
}

func (s *Server) imageError(w http.ResponseWriter, r *http.Request) {
	s.session(r.Context()).broken.Mark(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.session(ctx)
	c := s.loadCart(ctx)

	q := s.quote(ctx, c)
	resp := cartResponse{
		Lines:     make([]cartLine, 0, len(q.Lines)),
		Total:     q.Total.StringFixed(2),
		ItemCount: q.ItemCount,
		Empty:     q.Empty(),
		Stale:     q.Stale,
	}
	for _, ln := range q.Lines {
		resp.Lines = append(resp.Lines, cartLine{
			Line:       ln,
			PriceLabel: ln.UnitPrice.String(),
			Image:      s.Images.Resolve(menu.Item{ID: ln.ItemID, ImageURL: ln.ImageRef}, sess.broken),
		})
	}

	kit.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req deltaReq
	if !decodeDelta(w, r, &req) {
		return
	}

	s.mutateCart(w, r, id, "update_quantity", func(ctx context.Context, c *cart.Store) error {
		return c.UpdateQuantity(ctx, id, req.Delta)
	})
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutateCart(w, r, id, "remove", func(ctx context.Context, c *cart.Store) error {
		return c.RemoveItem(ctx, id)
	})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.loadCart(ctx).Clear(ctx); err != nil {
		s.writeCartError(w, r, err)
		return
	}
	s.metrics.cartMutation("clear")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) mutateCart(w http.ResponseWriter, r *http.Request, id, op string, fn func(context.Context, *cart.Store) error) {
	ctx := r.Context()
	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	c := s.loadCart(ctx)
	if err := fn(ctx, c); err != nil {
		s.writeCartError(w, r, err)
		return
	}
	s.metrics.cartMutation(op)

	kit.WriteJSON(w, http.StatusOK, quantityResponse{
		ID:       id,
		Changed:  true,
		Quantity: c.Quantity(id),
		Cart:     summarize(c),
	})
}

func (s *Server) checkoutStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.session(ctx)
	c := s.loadCart(ctx)

	st := sess.flow.Status(c.IsEmpty())
	if st.State == checkout.StateCart || st.State == checkout.StateFailed {
		q := s.quote(ctx, c)
		st.Quote = &q
	}
	kit.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionID(ctx)

	if s.CheckoutLimiter.Limited(id) {
		kit.WriteError(w, r, http.StatusTooManyRequests, "too many checkout attempts", nil)
		return
	}

	sess := s.session(ctx)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	c := s.loadCart(ctx)
	q := s.quote(ctx, c)

	clearPaid := func(ctx context.Context) error {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return cart.Load(ctx, s.Storage.Session(id), s.Log).Clear(ctx)
	}

	if _, err := sess.flow.Begin(ctx, q, clearPaid); err != nil {
		s.writeCheckoutError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusAccepted, sess.flow.Status(false))
}

func (s *Server) quote(ctx context.Context, c *cart.Store) checkout.Quote {
	cached := menu.NewCache(s.storage(ctx), s.Log).Load(ctx)
	return checkout.QuoteFor(ctx, c.Entries(), s.Catalog, cached, s.Log)
}

func (s *Server) card(it menu.Item, c *cart.Store, broken *menu.BrokenImages) itemView {
	qty := c.Quantity(it.ID)
	return itemView{
		ID:           it.ID,
		Name:         it.Name,
		Description:  it.Description,
		Type:         it.Type,
		Nation:       it.Nation,
		Category:     menu.CategoryOf(it),
		Price:        it.Price,
		PriceLabel:   it.Price.String(),
		Image:        s.Images.Resolve(it, broken),
		Quantity:     qty,
		CanDecrement: qty > 0,
	}
}

func summarize(c *cart.Store) cartSummary {
	return cartSummary{ItemCount: c.ItemCount(), Empty: c.IsEmpty()}
}

func pageParam(r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return p
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, menu.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.Is(err, menu.ErrUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "menu is unavailable, try again later", nil)
	default:
		s.Log.Warn("catalog error", zap.Error(err))
		kit.WriteError(w, r, http.StatusBadGateway, "could not load the menu", nil)
	}
}

func (s *Server) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Error("cart write failed", zap.Error(err), zap.String("session", sessionID(r.Context())))
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func (s *Server) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		s.metrics.checkout("empty")
		kit.WriteError(w, r, http.StatusBadRequest, "cart is empty", map[string]any{"state": checkout.StateEmpty})
	case errors.Is(err, checkout.ErrInProgress):
		kit.WriteError(w, r, http.StatusConflict, "checkout already in progress", nil)
	default:
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
