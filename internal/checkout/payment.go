package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Payment failures. There is no real processor behind the simulated gateway,
// but the flow treats these like a real integration would.
var (
	ErrDeclined       = errors.New("payment declined")
	ErrPaymentTimeout = errors.New("payment timed out")
	ErrPaymentNetwork = errors.New("payment network error")
)

// Gateway charges an amount, blocking until the processor answers.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal) error
}

// SimulatedGateway waits Delay and then answers with Outcome (nil means the
// charge went through).
type SimulatedGateway struct {
	Delay   time.Duration
	Outcome error
}

func (g SimulatedGateway) Charge(ctx context.Context, _ decimal.Decimal) error {
	t := time.NewTimer(g.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrap(ErrPaymentTimeout, ctx.Err().Error())
	case <-t.C:
		return g.Outcome
	}
}

// FailureCode is the short, client-facing name of a payment error.
func FailureCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDeclined):
		return "declined"
	case errors.Is(err, ErrPaymentTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrPaymentNetwork):
		return "network"
	default:
		return "error"
	}
}
