package game

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	crashMax   = 100.0
	minCashout = 1.01
)

// crashPoint draws a multiplier in [1.0, 100.0] via the inverse CDF
// 1/(1 - 0.99r): most rounds crash early, high multipliers are
// exponentially rarer, and the cap keeps the tail bounded.
func crashPoint(rng Rand) float64 {
	r := rng.Float64()
	point := 1.0 / (1.0 - r*0.99)
	return math.Min(point, crashMax)
}

// playCrash resolves a pre-committed cashout against a drawn crash point.
// The player wins iff the cashout multiplier is reached before the crash.
func (e *Engine) playCrash(stake decimal.Decimal, opts Options) (*Outcome, error) {
	cashoutAt, err := optFloat(opts, "cashout_at", 2.0)
	if err != nil {
		return nil, err
	}
	if cashoutAt < minCashout {
		return nil, fmt.Errorf("%w: cashout multiplier must be >= %v", ErrInvalidOptions, minCashout)
	}

	point := crashPoint(e.rng)

	trace := map[string]any{
		"crash_point": math.Round(point*100) / 100,
		"cashout_at":  cashoutAt,
	}

	if cashoutAt > point {
		return outcome(ResultLoss, stake, decimal.Zero, trace), nil
	}

	payout := stake.Mul(decimal.NewFromFloat(cashoutAt)).Mul(e.payoutFactor())
	return outcome(ResultWin, stake, payout, trace), nil
}
