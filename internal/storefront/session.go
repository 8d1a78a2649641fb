package storefront

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"FoodZone/internal/checkout"
	"FoodZone/internal/menu"
)

const (
	SessionCookie = "fz_session"
	sessionMaxAge = 365 * 24 * time.Hour
)

type ctxKey int

const sessionKey ctxKey = iota

// session is the server-side half of one browser: everything that used to
// live in the page rather than in storage.
type session struct {
	id string

	// mu serializes cart mutations, including the clear after payment.
	mu     sync.Mutex
	broken *menu.BrokenImages
	flow   *checkout.Flow

	touched time.Time
}

// Sessions tracks live sessions by cookie id.
type Sessions struct {
	mu      sync.Mutex
	byID    map[string]*session
	flowCfg checkout.Config
	now     func() time.Time
}

// NewSessions registers sessions whose checkout flows are built from flow.
func NewSessions(flow checkout.Config) *Sessions {
	return &Sessions{
		byID:    make(map[string]*session),
		flowCfg: flow,
		now:     time.Now,
	}
}

func (s *Sessions) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		sess = &session{
			id:     id,
			broken: menu.NewBrokenImages(),
			flow:   checkout.NewFlow(s.flowCfg),
		}
		s.byID[id] = sess
	}
	sess.touched = s.now()
	return sess
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep forgets sessions idle since before cutoff. Sessions with a payment in
// flight are kept. It returns the number dropped and the ids still live.
func (s *Sessions) Sweep(cutoff time.Time) (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	live := make([]string, 0, len(s.byID))
	for id, sess := range s.byID {
		if sess.touched.Before(cutoff) && !sess.flow.Busy() {
			delete(s.byID, id)
			n++
			continue
		}
		live = append(live, id)
	}
	return n, live
}

// withSession makes sure every request carries a session cookie and puts the
// id into the request context.
func withSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, id)))
		})
	}
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
