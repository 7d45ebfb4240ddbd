package wall

import (
	"fmt"
	"time"

	"github.com/videowall/videowall/embed"
)

// Verdict is the outcome of one watchdog sample.
type Verdict int

const (
	// VerdictIdle means the sample was not taken or the stall was already signalled.
	VerdictIdle Verdict = iota
	VerdictProgress
	VerdictPaused
	// VerdictWaiting means no progress yet, still within the threshold.
	VerdictWaiting
	VerdictStalled
)

func (v Verdict) String() string {
	switch v {
	case VerdictIdle:
		return "idle"
	case VerdictProgress:
		return "progress"
	case VerdictPaused:
		return "paused"
	case VerdictWaiting:
		return "waiting"
	case VerdictStalled:
		return "stalled"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Watchdog decides from successive status samples whether playback is stuck.
// It only reads the samples it is given and signals a stall once.
type Watchdog struct {
	threshold time.Duration
	maxZero   int

	lastTime       float64
	lastProgressAt time.Time
	zeroChecks     int
	signalled      bool
}

// NewWatchdog returns a watchdog. maxZero of 0 disables the zero position rule.
func NewWatchdog(threshold time.Duration, maxZero int) *Watchdog {
	return &Watchdog{threshold: threshold, maxZero: maxZero}
}

// Reset takes a new baseline, typically when playback starts.
func (w *Watchdog) Reset(now time.Time) {
	w.lastTime = 0
	w.lastProgressAt = now
	w.zeroChecks = 0
	w.signalled = false
}

// LastProgressAt is the time of the last observed movement.
func (w *Watchdog) LastProgressAt() time.Time {
	return w.lastProgressAt
}

// Observe samples status at now.
func (w *Watchdog) Observe(status embed.Status, now time.Time) Verdict {
	if w.signalled {
		return VerdictIdle
	}

	if status.Paused {
		w.lastProgressAt = now
		w.zeroChecks = 0
		return VerdictPaused
	}

	if status.CurrentTime != w.lastTime {
		w.lastTime = status.CurrentTime
		w.lastProgressAt = now
		if status.CurrentTime > 0 {
			w.zeroChecks = 0
			return VerdictProgress
		}
	}

	if status.CurrentTime == 0 {
		w.zeroChecks++
	}

	if w.maxZero > 0 && w.zeroChecks >= w.maxZero {
		w.signalled = true
		return VerdictStalled
	}

	if now.Sub(w.lastProgressAt) > w.threshold {
		w.signalled = true
		return VerdictStalled
	}

	return VerdictWaiting
}
