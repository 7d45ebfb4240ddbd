package embed

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/videowall/videowall/playlist"
)

// Fault is a failure injected into a simulated embed.
type Fault int

const (
	FaultNone Fault = iota
	// FaultNeverReady leaves the embed loading forever.
	FaultNeverReady
	// FaultError reports an error instead of becoming ready.
	FaultError
	// FaultStall becomes ready, then the playback position freezes.
	FaultStall
	// FaultMountError makes Mount itself fail.
	FaultMountError
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultNeverReady:
		return "never-ready"
	case FaultError:
		return "error"
	case FaultStall:
		return "stall"
	case FaultMountError:
		return "mount-error"
	default:
		return fmt.Sprintf("Fault(%d)", int(f))
	}
}

// ErrSimulated is the cause of every injected error.
var ErrSimulated = errors.New("embed: simulated failure")

// SimOptions configures the simulated adapter.
type SimOptions struct {
	Clock     clockwork.Clock
	LoadDelay time.Duration
	Duration  time.Duration
	// StallAt is the position at which FaultStall freezes playback.
	StallAt time.Duration
	// FailureRate is the probability of a random fault per mount.
	FailureRate float64
	// Script picks the fault of the n-th mount (from 1) of a video. It takes precedence over FailureRate.
	Script func(video playlist.Video, mount int) Fault
}

// Sim plays imaginary videos against a clock. It backs dry runs and tests.
type Sim struct {
	opts SimOptions

	mu          sync.Mutex
	active      *simHandle
	closed      bool
	mounts      map[string]int
	recreations int
	wg          sync.WaitGroup
}

// NewSim returns a simulated adapter.
func NewSim(opts SimOptions) *Sim {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.LoadDelay <= 0 {
		opts.LoadDelay = 500 * time.Millisecond
	}
	if opts.Duration <= 0 {
		opts.Duration = 30 * time.Second
	}
	return &Sim{opts: opts, mounts: make(map[string]int)}
}

var randomFaults = []Fault{FaultNeverReady, FaultError, FaultStall, FaultMountError}

func (s *Sim) fault(video playlist.Video, mount int) Fault {
	if s.opts.Script != nil {
		return s.opts.Script(video, mount)
	}
	if s.opts.FailureRate > 0 && rand.Float64() < s.opts.FailureRate {
		return randomFaults[rand.IntN(len(randomFaults))]
	}
	return FaultNone
}

func (s *Sim) Mount(video playlist.Video, listener Listener) (Handle, error) {
	if _, err := SourceFor(video.Provider); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.active != nil {
		return nil, ErrHandleMounted
	}

	s.mounts[video.String()]++
	fault := s.fault(video, s.mounts[video.String()])
	if fault == FaultMountError {
		return nil, fmt.Errorf("mount %s: %w", video, ErrSimulated)
	}

	h := &simHandle{
		clock:    s.opts.Clock,
		video:    video,
		listener: listener,
		fault:    fault,
		duration: s.opts.Duration,
		stallAt:  s.opts.StallAt,
		stop:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
	s.active = h

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		h.run(s.opts.LoadDelay)
	}()

	return h, nil
}

func (s *Sim) Unmount(handle Handle) error {
	h, ok := handle.(*simHandle)
	if !ok || h == nil {
		return fmt.Errorf("embed: foreign handle %T", handle)
	}

	s.mu.Lock()
	if s.active == h {
		s.active = nil
	}
	s.mu.Unlock()

	h.close()
	return nil
}

func (s *Sim) Recreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.active != nil {
		return ErrHandleMounted
	}
	s.recreations++
	return nil
}

// Close unmounts the active handle and waits for its goroutine.
func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	h := s.active
	s.active = nil
	s.mu.Unlock()

	if h != nil {
		h.close()
	}
	s.wg.Wait()
	return nil
}

// Recreations returns how many times the backend was recreated.
func (s *Sim) Recreations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recreations
}

// Mounts returns how many times video was mounted.
func (s *Sim) Mounts(video playlist.Video) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounts[video.String()]
}

// Mounted reports whether a handle is live.
func (s *Sim) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

type simHandle struct {
	clock    clockwork.Clock
	video    playlist.Video
	listener Listener
	fault    Fault
	duration time.Duration
	stallAt  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	wake     chan struct{}

	mu        sync.Mutex
	ready     bool
	finished  bool
	closed    bool
	startedAt time.Time
	paused    bool
	pausedAt  time.Time
	pausedFor time.Duration
}

func (h *simHandle) Video() playlist.Video { return h.video }

func (h *simHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.ready {
		return Status{}
	}
	return Status{
		Ready:       true,
		Playing:     !h.paused && !h.finished && !h.closed,
		Paused:      h.paused,
		CurrentTime: h.position().Seconds(),
		Duration:    h.duration.Seconds(),
	}
}

func (h *simHandle) TogglePause() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if !h.ready || h.finished {
		return nil
	}

	now := h.clock.Now()
	if h.paused {
		h.pausedFor += now.Sub(h.pausedAt)
	} else {
		h.pausedAt = now
	}
	h.paused = !h.paused

	select {
	case h.wake <- struct{}{}:
	default:
	}
	return nil
}

// position must be called with h.mu held.
func (h *simHandle) position() time.Duration {
	end := h.clock.Now()
	if h.paused {
		end = h.pausedAt
	}
	pos := end.Sub(h.startedAt) - h.pausedFor

	if h.fault == FaultStall && pos > h.stallAt {
		pos = h.stallAt
	}
	return min(max(pos, 0), h.duration)
}

func (h *simHandle) close() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		close(h.stop)
	})
}

func (h *simHandle) run(loadDelay time.Duration) {
	if !h.wait(loadDelay) {
		return
	}

	switch h.fault {
	case FaultNeverReady:
		<-h.stop
		return
	case FaultError:
		h.emit(Event{Kind: Error, Err: fmt.Errorf("play %s: %w", h.video, ErrSimulated)})
		return
	}

	h.mu.Lock()
	h.ready = true
	h.startedAt = h.clock.Now()
	h.mu.Unlock()
	h.emit(Event{Kind: Ready})

	if h.fault == FaultStall {
		<-h.stop
		return
	}

	for {
		h.mu.Lock()
		paused := h.paused
		remaining := h.duration - h.position()
		h.mu.Unlock()

		if paused {
			select {
			case <-h.stop:
				return
			case <-h.wake:
				continue
			}
		}

		if remaining <= 0 {
			h.emit(Event{Kind: Ended})
			return
		}

		timer := h.clock.NewTimer(remaining)
		select {
		case <-h.stop:
			timer.Stop()
			return
		case <-h.wake:
			timer.Stop()
		case <-timer.Chan():
		}
	}
}

// wait sleeps on the clock and reports whether the handle is still open.
func (h *simHandle) wait(d time.Duration) bool {
	timer := h.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.stop:
		return false
	case <-timer.Chan():
		return true
	}
}

func (h *simHandle) emit(event Event) {
	h.mu.Lock()
	if h.closed || h.finished {
		h.mu.Unlock()
		return
	}
	if event.Kind != Ready {
		h.finished = true
	}
	h.mu.Unlock()

	if h.listener != nil {
		h.listener(event)
	}
}
