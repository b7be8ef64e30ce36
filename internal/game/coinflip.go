package game

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// playCoinFlip resolves a heads-or-tails call. Even odds, so a win pays
// double the stake less the house edge.
func (e *Engine) playCoinFlip(stake decimal.Decimal, opts Options) (*Outcome, error) {
	choice, err := optString(opts, "choice", "heads")
	if err != nil {
		return nil, err
	}
	choice = strings.ToLower(choice)

	if choice != "heads" && choice != "tails" {
		return nil, fmt.Errorf("%w: choice must be %q or %q", ErrInvalidOptions, "heads", "tails")
	}

	flip := "heads"
	if e.rng.IntN(2) == 1 {
		flip = "tails"
	}

	trace := map[string]any{
		"flip":   flip,
		"choice": choice,
	}

	if flip != choice {
		return outcome(ResultLoss, stake, decimal.Zero, trace), nil
	}

	payout := stake.Mul(decimal.NewFromInt(2)).Mul(e.payoutFactor())
	return outcome(ResultWin, stake, payout, trace), nil
}
