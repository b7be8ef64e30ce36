package game

import "github.com/shopspring/decimal"

// slotSymbol is one reel symbol with its draw weight and win multiplier.
type slotSymbol struct {
	name   string
	weight int
	payout int64
}

// slotSymbols is the fixed weighted symbol set. Rarer symbols pay more.
var slotSymbols = []slotSymbol{
	{"cherry", 40, 2},
	{"lemon", 30, 3},
	{"orange", 20, 5},
	{"grape", 15, 10},
	{"bell", 10, 20},
	{"diamond", 5, 50},
	{"seven", 2, 100},
}

var slotWeights = func() []int {
	w := make([]int, len(slotSymbols))
	for i, s := range slotSymbols {
		w[i] = s.weight
	}
	return w
}()

// playSlots spins three independent weighted reels. Only three matching
// symbols pay; two of a kind is a loss.
func (e *Engine) playSlots(stake decimal.Decimal, _ Options) (*Outcome, error) {
	reels := [3]int{
		weightedPick(e.rng, slotWeights),
		weightedPick(e.rng, slotWeights),
		weightedPick(e.rng, slotWeights),
	}

	names := []string{
		slotSymbols[reels[0]].name,
		slotSymbols[reels[1]].name,
		slotSymbols[reels[2]].name,
	}
	trace := map[string]any{"reels": names}

	if reels[0] != reels[1] || reels[1] != reels[2] {
		return outcome(ResultLoss, stake, decimal.Zero, trace), nil
	}

	base := decimal.NewFromInt(slotSymbols[reels[0]].payout)
	payout := stake.Mul(base).Mul(e.payoutFactor())
	return outcome(ResultWin, stake, payout, trace), nil
}
