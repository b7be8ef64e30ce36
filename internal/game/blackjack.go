package game

import "github.com/shopspring/decimal"

// cardRanks is the infinite-shoe draw space: each draw is independent and
// uniform over the thirteen ranks.
var cardRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

var cardValues = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"J": 10, "Q": 10, "K": 10, "A": 11,
}

// handValue totals a hand, counting each ace as 11 and softening aces to
// 1 one at a time while the total busts.
func handValue(cards []string) int {
	value := 0
	aces := 0
	for _, c := range cards {
		value += cardValues[c]
		if c == "A" {
			aces++
		}
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

func drawCard(rng Rand) string {
	return cardRanks[rng.IntN(len(cardRanks))]
}

// playBlackjack runs a closed-loop hand: both player and dealer draw to
// 17 with no decision points, then totals are compared. A push returns
// exactly the stake; a win pays double less the house edge.
func (e *Engine) playBlackjack(stake decimal.Decimal, _ Options) (*Outcome, error) {
	player := []string{drawCard(e.rng), drawCard(e.rng)}
	dealer := []string{drawCard(e.rng), drawCard(e.rng)}

	for handValue(player) < 17 {
		player = append(player, drawCard(e.rng))
	}
	for handValue(dealer) < 17 {
		dealer = append(dealer, drawCard(e.rng))
	}

	playerValue := handValue(player)
	dealerValue := handValue(dealer)

	trace := map[string]any{
		"player_cards": player,
		"player_value": playerValue,
		"dealer_cards": dealer,
		"dealer_value": dealerValue,
	}

	winPayout := stake.Mul(decimal.NewFromInt(2)).Mul(e.payoutFactor())

	switch {
	case playerValue > 21:
		return outcome(ResultLoss, stake, decimal.Zero, trace), nil
	case dealerValue > 21:
		return outcome(ResultWin, stake, winPayout, trace), nil
	case playerValue > dealerValue:
		return outcome(ResultWin, stake, winPayout, trace), nil
	case playerValue == dealerValue:
		return outcome(ResultPush, stake, stake, trace), nil
	default:
		return outcome(ResultLoss, stake, decimal.Zero, trace), nil
	}
}
