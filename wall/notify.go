package wall

// EventKind classifies runtime notifications.
type EventKind int

const (
	EventCreated EventKind = iota + 1
	EventPlaying
	EventEnded
	EventFailure
	EventRecreated
	EventChecked
	EventDestroyed
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventPlaying:
		return "playing"
	case EventEnded:
		return "ended"
	case EventFailure:
		return "failure"
	case EventRecreated:
		return "recreated"
	case EventChecked:
		return "checked"
	case EventDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Notification describes a completed transition.
type Notification struct {
	Kind     EventKind
	Snapshot Snapshot
	// Failure is set for EventFailure.
	Failure *Failure
	// Action is set for EventFailure.
	Action Action
	// Reason is set for EventRecreated.
	Reason RecreationReason
	// Verdict is set for EventChecked.
	Verdict Verdict
}

// Observer is called after the runtime lock is released, in transition order
// per goroutine. It may call back into the runtime.
type Observer func(Notification)

// queue records a notification to deliver on unlock. r.mu must be held.
func (r *Runtime) queue(n Notification) {
	if len(r.observers) == 0 {
		return
	}
	n.Snapshot = r.snapshot()
	r.pending = append(r.pending, n)
}

// unlock releases r.mu and delivers queued notifications.
func (r *Runtime) unlock() {
	pending := r.pending
	r.pending = nil
	observers := r.observers
	r.mu.Unlock()

	for _, n := range pending {
		for _, observe := range observers {
			observe(n)
		}
	}
}
