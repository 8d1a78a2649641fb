package gateway

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"FoodZone/internal/auth"
	"FoodZone/pkg/kit"
)

type ctxKey string

const (
	userIDKey   ctxKey = "user_id"
	userRoleKey ctxKey = "user_role"
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

func UserRoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userRoleKey).(string)
	return v, ok
}

func withClaims(r *http.Request, c auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, c.UserID)
	ctx = context.WithValue(ctx, userRoleKey, c.Role)
	return r.WithContext(ctx)
}

// AuthJWT requires a valid access token from the Authorization header or the
// token cookie.
func AuthJWT(jwt *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}
			claims, err := jwt.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}
			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

// OptionalJWT attaches the caller's identity when a valid token is present
// and lets anonymous requests through untouched.
func OptionalJWT(jwt *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok, ok := kit.BearerToken(r); ok {
				if claims, err := jwt.Parse(tok); err == nil {
					r = withClaims(r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminForWrites lets safe methods through and requires an admin token for
// everything else.
func AdminForWrites(jwt *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := AuthJWT(jwt)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role, _ := UserRoleFromContext(r.Context()); role != kit.RoleAdmin {
				kit.WriteError(w, r, http.StatusForbidden, "admin only", nil)
				return
			}
			next.ServeHTTP(w, r)
		}))
		open := OptionalJWT(jwt)(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				open.ServeHTTP(w, r)
			default:
				guarded.ServeHTTP(w, r)
			}
		})
	}
}

// NewReverseProxy forwards to target. Identity headers on the way out are
// exactly the ones verified here; client copies never reach upstream.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()

			pr.Out.Header.Del(kit.HeaderUserID)
			pr.Out.Header.Del(kit.HeaderUserRole)
			if uid, ok := UserIDFromContext(pr.In.Context()); ok && uid != "" {
				pr.Out.Header.Set(kit.HeaderUserID, uid)
			}
			if role, ok := UserRoleFromContext(pr.In.Context()); ok && role != "" {
				pr.Out.Header.Set(kit.HeaderUserRole, role)
			}
			if id := chimw.GetReqID(pr.In.Context()); id != "" {
				pr.Out.Header.Set(chimw.RequestIDHeader, id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn("upstream error", zap.String("upstream", u.Host), zap.Error(err))
			kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
		},
	}, nil
}
