package catalog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FoodZone/pkg/kit"
)

type Server struct {
	Store Store
	Files FileStore
	Log   *zap.Logger
	Now   func() time.Time
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/menu-items", s.list)
	r.Get("/menu-items/{id}", s.get)
	r.Get("/files/{id}/view", s.viewFile)
	r.Get("/files/{id}/preview", s.previewFile)

	r.Group(func(ar chi.Router) {
		ar.Use(kit.RequireRole(kit.RoleAdmin))
		ar.Post("/menu-items", s.create)
		ar.Patch("/menu-items/{id}", s.update)
		ar.Delete("/menu-items/{id}", s.delete)
		ar.Post("/files", s.upload)
	})

	return r
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	f := ListFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.IDs = append(f.IDs, id)
			}
		}
	}

	items, err := s.Store.List(r.Context(), f)
	if err != nil {
		s.writeStoreError(w, r, err, "list menu items failed")
		return
	}
	kit.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	it, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "get menu item failed")
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := kit.DecodeJSON(w, r, &in); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	now := s.now()
	it := in.Apply(MenuItem{
		ID:        "m_" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errs := Validate(it); errs != nil {
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid menu item", errs)
		return
	}

	if err := s.Store.Create(r.Context(), it); err != nil {
		s.writeStoreError(w, r, err, "create menu item failed")
		return
	}
	kit.WriteJSON(w, http.StatusCreated, it)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in ItemInput
	if err := kit.DecodeJSON(w, r, &in); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	cur, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, "get menu item failed")
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	it := in.Apply(cur)
	it.UpdatedAt = s.now()
	if errs := Validate(it); errs != nil {
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid menu item", errs)
		return
	}

	if err := s.Store.Update(r.Context(), it); err != nil {
		s.writeStoreError(w, r, err, "update menu item failed")
		return
	}
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, "delete menu item failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.Is(err, context.DeadlineExceeded):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		if s.Log != nil {
			s.Log.Error(msg, zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
