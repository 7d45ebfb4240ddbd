package wall

// Action is what the policy prescribes after a failure.
type Action int

const (
	// Retry rebuilds the session of the same video.
	Retry Action = iota + 1
	// Skip recreates the backend and advances to the next video.
	Skip
)

func (a Action) String() string {
	switch a {
	case Retry:
		return "retry"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// Policy is the failure decision table. Load timeouts, provider errors and
// stalls are all treated alike.
type Policy struct {
	MaxConsecutiveFailures int
}

// Decide returns the action for the given count of consecutive failures,
// including the one being handled.
func (p Policy) Decide(_ FailureKind, failures int) Action {
	if failures < p.MaxConsecutiveFailures {
		return Retry
	}
	return Skip
}
