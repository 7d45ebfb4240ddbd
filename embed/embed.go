// Package embed mounts playlist videos into a media backend behind a single
// provider-neutral interface. Readiness, completion and failures are reported
// asynchronously as events; status is served from a cache and never blocks.
package embed

import (
	"errors"
	"fmt"

	"github.com/videowall/videowall/playlist"
)

var (
	// ErrHandleMounted is returned by Recreate while a video is mounted.
	ErrHandleMounted = errors.New("embed: a handle is still mounted")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("embed: adapter closed")
	// ErrProcessExited is reported when the backend dies under a mounted handle.
	ErrProcessExited = errors.New("embed: backend process exited")
	// ErrLoadFailed is reported when the backend cannot play a video.
	ErrLoadFailed = errors.New("embed: load failed")
)

// EventKind classifies adapter events.
type EventKind int

const (
	Ready EventKind = iota + 1
	Ended
	Error
)

func (k EventKind) String() string {
	switch k {
	case Ready:
		return "ready"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to the Listener of a mounted handle.
type Event struct {
	Kind EventKind
	// Err is set for Error events.
	Err error
}

// Listener receives the events of one handle. It is always invoked from a
// goroutine owned by the adapter, never from inside Mount.
type Listener func(Event)

// Status is a snapshot of a mounted video.
type Status struct {
	Ready       bool    `json:"ready"`
	Playing     bool    `json:"playing"`
	Paused      bool    `json:"paused"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

// Handle is an opaque reference to a mounted video.
type Handle interface {
	Video() playlist.Video
	// Status returns the last known state without blocking.
	Status() Status
	TogglePause() error
}

// Adapter is implemented by every embed backend.
type Adapter interface {
	// Mount starts loading video and returns immediately.
	Mount(video playlist.Video, listener Listener) (Handle, error)
	// Unmount stops the video and releases the handle's subscriptions.
	// Unmounting an already unmounted handle is a no-op.
	Unmount(handle Handle) error
	// Recreate discards the underlying backend instance. The next Mount
	// builds a fresh one. It fails with ErrHandleMounted while a handle is live.
	Recreate() error
	Close() error
}

// recovered converts a recovered panic value into an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("embed: panic: %w", err)
	}
	return fmt.Errorf("embed: panic: %v", r)
}
