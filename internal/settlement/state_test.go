package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayState_HappyPath(t *testing.T) {
	s := StateValidated
	for _, next := range []playState{StateDebited, StateResolved, StateCredited, StateRecorded} {
		var err error
		s, err = s.advance(next)
		require.NoError(t, err)
		require.Equal(t, next, s)
	}
}

func TestPlayState_ZeroPayoutSkipsCredit(t *testing.T) {
	s := StateResolved
	s, err := s.advance(StateRecorded)
	require.NoError(t, err)
	assert.Equal(t, StateRecorded, s)
}

func TestPlayState_RefundPaths(t *testing.T) {
	// Engine fault: refund straight from the debited state.
	s, err := StateDebited.advance(StateRefunded)
	require.NoError(t, err)
	s, err = s.advance(StateRecorded)
	require.NoError(t, err)
	assert.Equal(t, StateRecorded, s)

	// Credit fault: refund after the game resolved.
	s, err = StateResolved.advance(StateRefunded)
	require.NoError(t, err)
	_, err = s.advance(StateRecorded)
	require.NoError(t, err)
}

func TestPlayState_IllegalTransitions(t *testing.T) {
	all := []playState{StateValidated, StateDebited, StateResolved, StateCredited, StateRefunded, StateRecorded}

	legal := map[playState]map[playState]bool{
		StateValidated: {StateDebited: true},
		StateDebited:   {StateResolved: true, StateRefunded: true},
		StateResolved:  {StateCredited: true, StateRecorded: true, StateRefunded: true},
		StateCredited:  {StateRecorded: true},
		StateRefunded:  {StateRecorded: true},
		StateRecorded:  {},
	}

	for _, from := range all {
		for _, to := range all {
			got, err := from.advance(to)
			if legal[from][to] {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, got)
			} else {
				assert.Error(t, err, "%s -> %s", from, to)
				assert.Equal(t, from, got, "failed transition must not move the state")
			}
		}
	}
}
