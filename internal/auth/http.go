package auth

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"FoodZone/pkg/kit"
)

const defaultTokenTTL = 15 * time.Minute

type Server struct {
	Log   *zap.Logger
	Store UserStore
	JWT   *TokenMaker

	TokenTTL      time.Duration
	AdminEmails   []string
	SecureCookies bool
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResp struct {
	ID    string `json:"user_id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Password = normalizePassword(req.Password)
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid email", nil)
		return
	}
	if problems := PasswordProblems(req.Password); problems != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "weak password", map[string]any{"needs": problems})
		return
	}

	u, err := s.Store.Create(r.Context(), NewUser{
		ID:       "u_" + uuid.NewString(),
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     s.roleFor(req.Email),
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, toUserResp(u))
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Password = normalizePassword(req.Password)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}

	u, err := s.Store.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	ttl := s.tokenTTL()
	tok, err := s.JWT.New(u.ID, u.Email, u.Role, ttl)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.setTokenCookie(w, tok, int(ttl.Seconds()))
	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok, ExpiresIn: int64(ttl.Seconds())})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.setTokenCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, toUserResp(u))
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req changePasswordReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	req.NewPassword = normalizePassword(req.NewPassword)

	if _, err := s.Store.Verify(r.Context(), u.Email, req.OldPassword); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if problems := PasswordProblems(req.NewPassword); problems != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "weak password", map[string]any{"needs": problems})
		return
	}
	if req.NewPassword == normalizePassword(req.OldPassword) {
		kit.WriteError(w, r, http.StatusBadRequest, "new password must differ", nil)
		return
	}

	if err := s.Store.SetPassword(r.Context(), u.ID, req.NewPassword); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// currentUser resolves the caller from the bearer header or token cookie and
// writes the error response itself when that fails.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (User, bool) {
	tok, ok := kit.BearerToken(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
		return User{}, false
	}

	claims, err := s.JWT.Parse(tok)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return User{}, false
	}

	u, found, err := s.Store.GetByID(r.Context(), claims.UserID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return User{}, false
	}
	if !found {
		kit.WriteError(w, r, http.StatusUnauthorized, "unknown user", nil)
		return User{}, false
	}
	return u, true
}

func (s *Server) roleFor(email string) string {
	for _, admin := range s.AdminEmails {
		if normalizeEmail(admin) == email {
			return kit.RoleAdmin
		}
	}
	return kit.RoleUser
}

func (s *Server) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return defaultTokenTTL
}

func (s *Server) setTokenCookie(w http.ResponseWriter, tok string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     kit.TokenCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmailExists):
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrInvalidCredentials):
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, ErrUserNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, context.DeadlineExceeded):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.Log.Error("user store", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func toUserResp(u User) userResp {
	return userResp{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
