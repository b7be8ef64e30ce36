package game

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// playDice resolves an over/under prediction on a uniform roll in [0, 100].
// A target that leaves zero win chance (100 for "over", 0 for "under") is
// rejected up front so the fair-payout division is always defined.
func (e *Engine) playDice(stake decimal.Decimal, opts Options) (*Outcome, error) {
	prediction, err := optString(opts, "prediction", "over")
	if err != nil {
		return nil, err
	}
	target, err := optInt(opts, "target", 50)
	if err != nil {
		return nil, err
	}

	if target < 0 || target > 100 {
		return nil, fmt.Errorf("%w: target must be between 0 and 100", ErrInvalidOptions)
	}

	var winChance decimal.Decimal
	switch prediction {
	case "over":
		if target == 100 {
			return nil, fmt.Errorf("%w: target 100 with prediction over has no winning roll", ErrInvalidOptions)
		}
		winChance = decimal.NewFromInt(int64(100 - target)).Div(decimal.NewFromInt(100))
	case "under":
		if target == 0 {
			return nil, fmt.Errorf("%w: target 0 with prediction under has no winning roll", ErrInvalidOptions)
		}
		winChance = decimal.NewFromInt(int64(target)).Div(decimal.NewFromInt(100))
	default:
		return nil, fmt.Errorf("%w: prediction must be %q or %q", ErrInvalidOptions, "over", "under")
	}

	roll := e.rng.IntN(101)

	var won bool
	if prediction == "over" {
		won = roll > target
	} else {
		won = roll < target
	}

	trace := map[string]any{
		"roll":       roll,
		"target":     target,
		"prediction": prediction,
	}

	if !won {
		return outcome(ResultLoss, stake, decimal.Zero, trace), nil
	}

	// Fair payout is stake / win_chance, discounted by the house edge.
	payout := stake.Div(winChance).Mul(e.payoutFactor())
	return outcome(ResultWin, stake, payout, trace), nil
}
