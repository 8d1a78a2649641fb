// Package checkout runs a session's checkout: quoting the cart, the
// simulated payment round trip and the success/redirect hand-off.
package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"FoodZone/internal/cart"
)

type State string

const (
	StateCart       State = "cart"
	StateEmpty      State = "empty"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrInProgress = errors.New("checkout already in progress")
)

const defaultChargeTimeout = 30 * time.Second

type Config struct {
	Gateway       Gateway
	RedirectTo    string
	RedirectDelay time.Duration
	ChargeTimeout time.Duration

	Log *zap.Logger
	Now func() time.Time
	// OnFinish observes every completed attempt with its FailureCode
	// ("" for success).
	OnFinish func(code string)
}

// Flow is one session's checkout state machine. All methods are safe for
// concurrent use.
type Flow struct {
	cfg Config

	mu         sync.Mutex
	state      State
	quote      Quote
	failure    string
	redirectAt time.Time
}

func NewFlow(cfg Config) *Flow {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ChargeTimeout <= 0 {
		cfg.ChargeTimeout = defaultChargeTimeout
	}
	if cfg.RedirectTo == "" {
		cfg.RedirectTo = "/menu"
	}
	return &Flow{cfg: cfg, state: StateCart}
}

// Begin starts paying for q. An empty quote moves the flow to StateEmpty and
// never reaches StateProcessing. clear runs after a successful charge. The
// returned channel closes once the attempt has finished.
func (f *Flow) Begin(ctx context.Context, q Quote, clear func(context.Context) error) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateProcessing {
		return nil, ErrInProgress
	}
	if q.Empty() {
		f.state = StateEmpty
		return nil, ErrEmptyCart
	}

	f.state = StateProcessing
	f.quote = q
	f.failure = ""

	done := make(chan struct{})
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.cfg.ChargeTimeout)
	go func() {
		defer close(done)
		defer cancel()
		f.finish(cctx, f.cfg.Gateway.Charge(cctx, q.Total), clear)
	}()
	return done, nil
}

func (f *Flow) finish(ctx context.Context, chargeErr error, clear func(context.Context) error) {
	if chargeErr == nil && clear != nil {
		if err := clear(ctx); err != nil {
			// The money moved; report success and leave the stale cart.
			f.cfg.Log.Error("cart clear after payment failed", zap.Error(err))
		}
	}

	code := FailureCode(chargeErr)

	f.mu.Lock()
	if chargeErr != nil {
		f.state = StateFailed
		f.failure = code
		f.cfg.Log.Warn("checkout payment failed", zap.Error(chargeErr), zap.String("code", code))
	} else {
		f.state = StateSuccess
		f.redirectAt = f.cfg.Now().Add(f.cfg.RedirectDelay)
	}
	f.mu.Unlock()

	if f.cfg.OnFinish != nil {
		f.cfg.OnFinish(code)
	}
}

// Busy reports whether a payment is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == StateProcessing
}

type Status struct {
	State      State  `json:"state"`
	Quote      *Quote `json:"quote,omitempty"`
	Failure    string `json:"failure,omitempty"`
	RedirectTo string `json:"redirect_to,omitempty"`
	// RedirectInMS is how long the success screen stays up.
	RedirectInMS int64 `json:"redirect_in_ms,omitempty"`
}

// Status reports the flow for a cart that is currently empty or not. Once a
// success screen has been shown for the redirect delay, the flow starts over.
func (f *Flow) Status(cartEmpty bool) Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateProcessing:
		q := f.quote
		return Status{State: StateProcessing, Quote: &q}
	case StateSuccess:
		if left := f.redirectAt.Sub(f.cfg.Now()); left > 0 {
			q := f.quote
			return Status{
				State:        StateSuccess,
				Quote:        &q,
				RedirectTo:   f.cfg.RedirectTo,
				RedirectInMS: left.Milliseconds(),
			}
		}
		f.state = StateCart
		f.quote = Quote{}
	case StateFailed:
		if !cartEmpty {
			return Status{State: StateFailed, Failure: f.failure}
		}
		f.state = StateCart
	}

	if cartEmpty {
		f.state = StateEmpty
		return Status{State: StateEmpty}
	}
	f.state = StateCart
	return Status{State: StateCart}
}

func sortedIDs(e cart.Entries) []string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
