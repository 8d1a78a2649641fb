package kit

import (
	"net/http"
	"strings"
)

// Identity headers set by the gateway after it verified a token. Upstream
// services trust them and nothing else; the gateway strips client copies.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	TokenCookie = "token"
	RoleAdmin   = "admin"
	RoleUser    = "user"
)

// BearerToken returns the access token from the Authorization header, or
// from the HttpOnly cookie the auth service sets on login.
func BearerToken(r *http.Request) (string, bool) {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		return tok, tok != ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// RequireRole rejects requests whose gateway-injected role is not one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(HeaderUserID) == "" {
				WriteError(w, r, http.StatusUnauthorized, "no user", nil)
				return
			}
			if _, ok := allowed[strings.ToLower(r.Header.Get(HeaderUserRole))]; !ok {
				WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
