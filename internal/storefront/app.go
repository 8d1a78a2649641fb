package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodZone/pkg/kit"
)

type HTTPDeps struct {
	Log          *zap.Logger
	Service      string
	Registry     *prometheus.Registry
	MetricsOn    bool
	MetricsToken string
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	if s.CheckoutLimiter == nil {
		s.CheckoutLimiter = kit.NewIPRateLimiter(10, time.Minute)
	}
	if deps.Registry != nil {
		s.metrics = NewMetrics(deps.Registry)
	}
	s.Sessions.flowCfg.OnFinish = s.metrics.checkout
	if s.Sessions.flowCfg.Log == nil {
		s.Sessions.flowCfg.Log = s.Log
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	kit.MountMetrics(r, deps.Registry, deps.Service, deps.MetricsOn, deps.MetricsToken)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Storage.Ping(ctx); err != nil {
			s.Log.Warn("readyz: storage", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		if err := s.Catalog.Ping(ctx); err != nil {
			s.Log.Warn("readyz: catalog", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(sr chi.Router) {
		sr.Use(withSession(s.SecureCookies))

		sr.Get("/menu", s.MenuHandler())
		sr.Get("/menu/{id}", s.ItemHandler())
		sr.Post("/menu/{id}/quantity", s.SetQuantityHandler())
		sr.Post("/menu/{id}/image-error", s.ImageErrorHandler())

		sr.Get("/cart", s.CartHandler())
		sr.Post("/cart/items/{id}", s.UpdateQuantityHandler())
		sr.Delete("/cart/items/{id}", s.RemoveItemHandler())
		sr.Delete("/cart", s.ClearCartHandler())

		sr.Get("/checkout", s.CheckoutStatusHandler())
		sr.Post("/checkout", s.CheckoutHandler())
	})

	return r
}

// Sweeper drops idle sessions and their stored data every interval. Stored
// data of a live session is kept however old its last write is.
func (s *Server) Sweeper(idle, interval time.Duration) func(ctx context.Context) {
	return func(ctx context.Context) {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.sweep(ctx, idle)
			}
		}
	}
}

func (s *Server) sweep(ctx context.Context, idle time.Duration) {
	cutoff := time.Now().Add(-idle)

	dropped, live := s.Sessions.Sweep(cutoff)
	expired, err := s.Storage.Expire(ctx, cutoff, live)
	if err != nil {
		s.Log.Warn("session storage sweep failed", zap.Error(err))
		return
	}
	if dropped > 0 || expired > 0 {
		s.Log.Info("idle sessions swept", zap.Int("sessions", dropped), zap.Int("stored", expired))
	}
}
