package settlement

import "fmt"

// playState tracks one play through the settlement pipeline. Terminal
// state is always StateRecorded, reached either through the credit path
// or the refund path; there is no way out of the pipeline that leaves
// money in flight.
type playState string

// Settlement states.
const (
	StateValidated playState = "validated"
	StateDebited   playState = "debited"
	StateResolved  playState = "resolved"
	StateCredited  playState = "credited"
	StateRefunded  playState = "refunded"
	StateRecorded  playState = "recorded"
)

// advance moves to the next state, rejecting illegal transitions.
func (s playState) advance(to playState) (playState, error) {
	switch s {
	case StateValidated:
		if to == StateDebited {
			return to, nil
		}
	case StateDebited:
		if to == StateResolved || to == StateRefunded {
			return to, nil
		}
	case StateResolved:
		if to == StateCredited || to == StateRecorded || to == StateRefunded {
			return to, nil
		}
	case StateCredited:
		if to == StateRecorded {
			return to, nil
		}
	case StateRefunded:
		if to == StateRecorded {
			return to, nil
		}
	}
	return s, fmt.Errorf("invalid settlement transition: %s -> %s", s, to)
}
