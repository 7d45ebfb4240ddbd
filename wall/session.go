package wall

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/playlist"
)

// ReadyState is the lifecycle state of a session.
type ReadyState int

const (
	Creating ReadyState = iota + 1
	Ready
	Playing
	Ended
	Stalled
	Errored
	Destroyed
)

func (s ReadyState) String() string {
	switch s {
	case Creating:
		return "CREATING"
	case Ready:
		return "READY"
	case Playing:
		return "PLAYING"
	case Ended:
		return "ENDED"
	case Stalled:
		return "STALLED"
	case Errored:
		return "ERRORED"
	case Destroyed:
		return "DESTROYED"
	default:
		return fmt.Sprintf("ReadyState(%d)", int(s))
	}
}

func (s ReadyState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ReadyState) UnmarshalText(text []byte) error {
	for state := Creating; state <= Destroyed; state++ {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown ready state %q", text)
}

// Live reports whether a session in this state still holds the embed.
func (s ReadyState) Live() bool {
	return s != 0 && s != Destroyed
}

// Session is the mounted embed of one video.
type Session struct {
	Video          playlist.Video
	Index          int
	Generation     uint64
	MountedAt      time.Time
	LastProgressAt time.Time
	State          ReadyState
	// VideosPlayedSinceRecreate is the switch counter at the time of creation.
	VideosPlayedSinceRecreate int

	handle     embed.Handle
	failed     bool
	loadTimer  clockwork.Timer
	retryTimer clockwork.Timer
	ticker     *ticker
	watchdog   *Watchdog
}

// stopTimers cancels every timer owned by the session.
func (s *Session) stopTimers() {
	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.stopWatchdog()
}

func (s *Session) stopWatchdog() {
	if s.ticker != nil {
		s.ticker.stop()
		s.ticker = nil
	}
}
