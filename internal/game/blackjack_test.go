package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHandValue(t *testing.T) {
	cases := []struct {
		name  string
		cards []string
		want  int
	}{
		{"hard twenty", []string{"10", "K"}, 20},
		{"natural", []string{"A", "K"}, 21},
		{"soft seventeen", []string{"A", "6"}, 17},
		{"ace softens once", []string{"A", "9", "K"}, 20},
		{"two aces soften", []string{"A", "A", "9"}, 21},
		{"all aces", []string{"A", "A", "A", "A"}, 14},
		{"bust", []string{"K", "Q", "5"}, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, handValue(tc.cards))
		})
	}
}

// Index 8 draws a ten: 20 vs 20 is a push, which returns exactly the stake.
func TestBlackjack_PushReturnsStake(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{ints: []int{8, 8, 8, 8}})
	stake := decimal.NewFromFloat(12.5)

	out, err := e.Play(VariantBlackjack, stake, nil)
	require.NoError(t, err)

	assert.Equal(t, ResultPush, out.Result)
	assert.True(t, out.Payout.Equal(stake), "push payout %s != stake %s", out.Payout, stake)
	assert.Equal(t, "1", out.Multiplier.String())
}

// Player 20 beats dealer 17: K,Q vs 9,8. Win pays 2x less the edge.
func TestBlackjack_PlayerWin(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{ints: []int{11, 10, 7, 6}})

	out, err := e.Play(VariantBlackjack, decimal.NewFromInt(10), nil)
	require.NoError(t, err)

	assert.Equal(t, ResultWin, out.Result)
	assert.Equal(t, "19.60", out.Payout.StringFixed(2))
	assert.Equal(t, 20, out.Trace["player_value"])
	assert.Equal(t, 17, out.Trace["dealer_value"])
}

// A player bust loses even when the dealer busts too: both hands start
// 10,6 and draw a king to 26.
func TestBlackjack_PlayerBustLosesFirst(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{ints: []int{8, 4, 8, 4, 11, 11}})

	out, err := e.Play(VariantBlackjack, decimal.NewFromInt(10), nil)
	require.NoError(t, err)

	assert.Equal(t, ResultLoss, out.Result)
	assert.True(t, out.Payout.IsZero())
	assert.Equal(t, 26, out.Trace["player_value"])
	assert.Equal(t, 26, out.Trace["dealer_value"])
}

func TestBlackjack_DealerBustPaysPlayer(t *testing.T) {
	// Player K,7 stands on 17; dealer 10,6 draws a king and busts at 26.
	e := newTestEngine(t, "0", &scriptRand{ints: []int{11, 5, 8, 4, 11}})

	out, err := e.Play(VariantBlackjack, decimal.NewFromInt(10), nil)
	require.NoError(t, err)

	assert.Equal(t, ResultWin, out.Result)
	assert.Equal(t, "20.00", out.Payout.StringFixed(2))
}

func TestBlackjack_BothHandsReachSeventeen(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := newTestEngine(t, "0.02", NewSeededRand(
			rapid.Uint64().Draw(t, "seed1"),
			rapid.Uint64().Draw(t, "seed2"),
		))

		out, err := e.Play(VariantBlackjack, decimal.NewFromInt(10), nil)
		require.NoError(t, err)

		playerValue := out.Trace["player_value"].(int)
		dealerValue := out.Trace["dealer_value"].(int)
		assert.GreaterOrEqual(t, playerValue, 17)
		assert.GreaterOrEqual(t, dealerValue, 17)

		switch out.Result {
		case ResultPush:
			assert.Equal(t, playerValue, dealerValue)
			assert.True(t, out.Payout.Equal(decimal.NewFromInt(10)))
		case ResultLoss:
			assert.True(t, out.Payout.IsZero())
		case ResultWin:
			assert.Equal(t, "19.60", out.Payout.StringFixed(2))
		}
	})
}

func TestHandValue_NeverImprovableBust(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cards := rapid.SliceOfN(rapid.SampledFrom(cardRanks), 2, 8).Draw(t, "cards")
		v := handValue(cards)

		// The total never exceeds 21 while an ace could still soften.
		if v > 21 {
			minimum := 0
			for _, c := range cards {
				if c == "A" {
					minimum++
				} else {
					minimum += cardValues[c]
				}
			}
			assert.Equal(t, minimum, v)
		}
	})
}
