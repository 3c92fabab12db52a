package swapper

// State is the executor's position in the swap lifecycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSettledSuccess
	StateSettledFailure
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSettledSuccess:
		return "settled_success"
	case StateSettledFailure:
		return "settled_failure"
	default:
		return "unknown"
	}
}
