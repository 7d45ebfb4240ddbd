// Package wall is the player lifecycle manager of the video wall. A Runtime
// owns the single live session, its timers, the failure counter, the
// recreation counter and the back-navigation history. Every transition runs
// to completion under one lock; timers and adapter callbacks carry the
// generation of the session they belong to and do nothing once it is gone.
package wall

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/history"
	"github.com/videowall/videowall/playlist"
)

// Stats are cumulative counters of a runtime.
type Stats struct {
	Created           uint64 `json:"created"`
	Destroyed         uint64 `json:"destroyed"`
	Playing           uint64 `json:"playing"`
	Ended             uint64 `json:"ended"`
	LoadTimeouts      uint64 `json:"loadTimeouts"`
	ProviderErrors    uint64 `json:"providerErrors"`
	Stalls            uint64 `json:"stalls"`
	MountErrors       uint64 `json:"mountErrors"`
	Retries           uint64 `json:"retries"`
	Skips             uint64 `json:"skips"`
	Recreations       uint64 `json:"recreations"`
	ForcedRecreations uint64 `json:"forcedRecreations"`
	WatchdogChecks    uint64 `json:"watchdogChecks"`
	StaleCallbacks    uint64 `json:"staleCallbacks"`
}

// Snapshot is a consistent view of the runtime.
type Snapshot struct {
	Videos              []playlist.Video `json:"videos"`
	CurrentVideoIndex   int              `json:"currentVideoIndex"`
	CurrentVideo        playlist.Video   `json:"currentVideo"`
	VideoCount          int              `json:"videoCount"`
	ConsecutiveFailures int              `json:"consecutiveFailures"`
	Player              embed.Status     `json:"player"`
	State               ReadyState       `json:"state"`
	Generation          uint64           `json:"generation"`
	MountedAt           time.Time        `json:"mountedAt"`
	LastProgressAt      time.Time        `json:"lastProgressAt"`
	CanGoBack           bool             `json:"canGoBack"`
	History             []int            `json:"history"`
	Stats               Stats            `json:"stats"`
}

// Option customizes a Runtime.
type Option func(*Runtime)

// WithClock replaces the real clock.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Runtime) { r.clock = clock }
}

// WithStartIndex sets the first video. Out of range values are ignored.
func WithStartIndex(index int) Option {
	return func(r *Runtime) {
		if index >= 0 && index < r.videos.Len() {
			r.index = index
		}
	}
}

// WithObserver adds an observer.
func WithObserver(observer Observer) Option {
	return func(r *Runtime) { r.observers = append(r.observers, observer) }
}

// WithRandom replaces the source of random indices. intn(n) must return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(r *Runtime) { r.intn = intn }
}

// Runtime is the single owner of the wall's mutable state.
type Runtime struct {
	mu sync.Mutex

	cfg     Config
	policy  Policy
	clock   clockwork.Clock
	adapter embed.Adapter
	videos  *playlist.Playlist
	intn    func(int) int

	index               int
	generation          uint64
	session             *Session
	failures            int
	playedSinceRecreate int
	history             *history.Stack
	stats               Stats
	closed              bool

	observers []Observer
	pending   []Notification
}

// New returns a runtime. No session exists until CreatePlayer is called.
func New(videos *playlist.Playlist, adapter embed.Adapter, cfg Config, options ...Option) (*Runtime, error) {
	if videos == nil || videos.Len() == 0 {
		return nil, ErrEmptyPlaylist
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wall config: %w", err)
	}

	r := &Runtime{
		cfg:     cfg,
		policy:  Policy{MaxConsecutiveFailures: cfg.MaxConsecutiveFailures},
		clock:   clockwork.NewRealClock(),
		adapter: adapter,
		videos:  videos,
		intn:    rand.IntN,
		history: history.New(cfg.HistorySize),
	}

	for _, option := range options {
		option(r)
	}

	return r, nil
}

// Config returns the configuration the runtime was built with.
func (r *Runtime) Config() Config { return r.cfg }

// Videos returns the playlist.
func (r *Runtime) Videos() []playlist.Video { return r.videos.Videos() }

// CurrentVideoIndex is the playlist position of the current or next session.
func (r *Runtime) CurrentVideoIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

func (r *Runtime) CurrentVideo() playlist.Video {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.videos.At(r.index)
}

// VideoCount is the number of video switches since the last recreation.
func (r *Runtime) VideoCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playedSinceRecreate
}

func (r *Runtime) ConsecutiveFailures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

// Player returns the status of the live embed, or the zero Status.
func (r *Runtime) Player() embed.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerStatus()
}

// History is the back-navigation stack. Pushing and popping it directly
// does not switch videos.
func (r *Runtime) History() *history.Stack { return r.history }

// State is the state of the most recent session.
func (r *Runtime) State() ReadyState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return Destroyed
	}
	return r.session.State
}

// Session returns a copy of the most recent session.
func (r *Runtime) Session() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return Session{}, false
	}
	return Session{
		Video:                     r.session.Video,
		Index:                     r.session.Index,
		Generation:                r.session.Generation,
		MountedAt:                 r.session.MountedAt,
		LastProgressAt:            r.session.LastProgressAt,
		State:                     r.session.State,
		VideosPlayedSinceRecreate: r.session.VideosPlayedSinceRecreate,
	}, true
}

func (r *Runtime) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Runtime) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// snapshot must be called with r.mu held.
func (r *Runtime) snapshot() Snapshot {
	s := Snapshot{
		Videos:              r.videos.Videos(),
		CurrentVideoIndex:   r.index,
		CurrentVideo:        r.videos.At(r.index),
		VideoCount:          r.playedSinceRecreate,
		ConsecutiveFailures: r.failures,
		Player:              r.playerStatus(),
		State:               Destroyed,
		Generation:          r.generation,
		CanGoBack:           r.history.CanGoBack(),
		History:             r.history.Indices(),
		Stats:               r.stats,
	}
	if r.session != nil {
		s.State = r.session.State
		s.MountedAt = r.session.MountedAt
		s.LastProgressAt = r.session.LastProgressAt
	}
	return s
}

// live returns the session if it still holds the embed. r.mu must be held.
func (r *Runtime) live() *Session {
	if r.session == nil || !r.session.State.Live() {
		return nil
	}
	return r.session
}

// current returns the live session of generation gen. r.mu must be held.
func (r *Runtime) current(gen uint64) *Session {
	s := r.live()
	if s == nil || s.Generation != gen {
		r.stats.StaleCallbacks++
		return nil
	}
	return s
}

func (r *Runtime) playerStatus() embed.Status {
	s := r.live()
	if s == nil || s.handle == nil {
		return embed.Status{}
	}
	return status(s.handle)
}

// countFailure bumps the per-kind counter. r.mu must be held.
func (r *Runtime) countFailure(kind FailureKind) {
	switch kind {
	case LoadTimeout:
		r.stats.LoadTimeouts++
	case ProviderError:
		r.stats.ProviderErrors++
	case Stall:
		r.stats.Stalls++
	}
}

// Close destroys the live session and rejects further sessions.
// It does not close the adapter.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.unlock()
	r.closed = true
	r.destroy()
}
