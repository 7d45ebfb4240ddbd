package wall

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionActive is returned when a session is created while another is live.
	ErrSessionActive = errors.New("wall: a session is already live")
	// ErrEmptyPlaylist is returned by New for a playlist without videos.
	ErrEmptyPlaylist = errors.New("wall: playlist is empty")
	// ErrClosed is returned by operations on a closed runtime.
	ErrClosed = errors.New("wall: runtime closed")
	// ErrIndexOutOfRange is returned for a playlist index outside the playlist.
	ErrIndexOutOfRange = errors.New("wall: index outside the playlist")
	// ErrNoSession is returned when an operation needs a live session.
	ErrNoSession = errors.New("wall: no live session")
	// ErrLoadTimeout is the cause of LoadTimeout failures.
	ErrLoadTimeout = errors.New("wall: video did not become ready in time")
	// ErrStalled is the cause of Stall failures.
	ErrStalled = errors.New("wall: playback stalled")
)

// FailureKind classifies recoverable playback failures.
type FailureKind int

const (
	LoadTimeout FailureKind = iota + 1
	ProviderError
	Stall
)

func (k FailureKind) String() string {
	switch k {
	case LoadTimeout:
		return "load-timeout"
	case ProviderError:
		return "provider-error"
	case Stall:
		return "stall"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// RecreationReason tells why the embed backend was rebuilt.
type RecreationReason int

const (
	// RecreationScheduled happens every MaxVideosBeforeRecreate switches.
	RecreationScheduled RecreationReason = iota + 1
	// RecreationForced discards a backend that failed too often.
	RecreationForced
)

func (r RecreationReason) String() string {
	switch r {
	case RecreationScheduled:
		return "scheduled"
	case RecreationForced:
		return "forced"
	default:
		return fmt.Sprintf("RecreationReason(%d)", int(r))
	}
}

// Failure is a failure of one session as seen by the policy.
type Failure struct {
	Kind       FailureKind
	Index      int
	Generation uint64
	Err        error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s on video %d: %v", f.Kind, f.Index, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }
