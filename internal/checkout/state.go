package checkout

// State is the progress of one checkout attempt. It is never persisted.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateNormalizing
	StateSubmitting
	StateRedirected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateNormalizing:
		return "normalizing"
	case StateSubmitting:
		return "submitting"
	case StateRedirected:
		return "redirected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// attempt records the state machine of a single BuildSession call
type attempt struct {
	state    State
	failedAt State
}

func (a *attempt) advance(to State) {
	a.state = to
}

func (a *attempt) fail() {
	if a.state == StateFailed {
		return
	}
	a.failedAt = a.state
	a.state = StateFailed
}
