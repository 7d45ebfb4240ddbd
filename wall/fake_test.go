package wall

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/playlist"
)

var (
	videoA = playlist.Video{Provider: playlist.YouTube, ID: "A"}
	videoB = playlist.Video{Provider: playlist.Vimeo, ID: "B"}
	videoC = playlist.Video{Provider: playlist.YouTube, ID: "C"}
)

func threeVideos() *playlist.Playlist {
	return lo.Must(playlist.New([]playlist.Video{videoA, videoB, videoC}))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxVideosBeforeRecreate = 100
	cfg.VideoLoadTimeout = 15 * time.Second
	cfg.WatchdogCheckInterval = 3 * time.Second
	cfg.StallThreshold = 10 * time.Second
	cfg.MaxZeroTimeChecks = 0
	cfg.RetryDelay = 2 * time.Second
	return cfg
}

// fakeHandle is driven by the test goroutine.
type fakeHandle struct {
	adapter  *fakeAdapter
	video    playlist.Video
	listener embed.Listener

	mu        sync.Mutex
	status    embed.Status
	unmounted bool
}

func (h *fakeHandle) Video() playlist.Video { return h.video }

func (h *fakeHandle) Status() embed.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *fakeHandle) TogglePause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unmounted {
		return embed.ErrClosed
	}
	h.status.Paused = !h.status.Paused
	h.status.Playing = !h.status.Paused
	return nil
}

func (h *fakeHandle) emit(kind embed.EventKind) {
	h.mu.Lock()
	if kind == embed.Ready {
		h.status.Ready = true
		h.status.Playing = true
	}
	h.mu.Unlock()
	h.listener(embed.Event{Kind: kind})
}

func (h *fakeHandle) fail(err error) {
	h.listener(embed.Event{Kind: embed.Error, Err: err})
}

func (h *fakeHandle) setTime(seconds float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.CurrentTime = seconds
}

// fakeAdapter records every call and enforces the single mount rule.
type fakeAdapter struct {
	mu          sync.Mutex
	handles     []*fakeHandle
	live        int
	maxLive     int
	recreations int
	log         []string
	violations  []string
	attempts    int
	mountErr    func(video playlist.Video, attempt int) error
	panicMount  bool
}

func (a *fakeAdapter) Mount(video playlist.Video, listener embed.Listener) (embed.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.panicMount {
		panic("sdk exploded")
	}

	a.attempts++
	a.log = append(a.log, "mount "+video.String())
	if a.mountErr != nil {
		if err := a.mountErr(video, a.attempts); err != nil {
			return nil, err
		}
	}

	h := &fakeHandle{adapter: a, video: video, listener: listener}
	a.handles = append(a.handles, h)
	a.live++
	if a.live > a.maxLive {
		a.maxLive = a.live
	}
	return h, nil
}

func (a *fakeAdapter) Unmount(handle embed.Handle) error {
	h := handle.(*fakeHandle)

	h.mu.Lock()
	already := h.unmounted
	h.unmounted = true
	h.status.Playing = false
	h.mu.Unlock()

	if already {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.live--
	a.log = append(a.log, "unmount "+h.video.String())
	return nil
}

func (a *fakeAdapter) Recreate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log = append(a.log, "recreate")
	if a.live > 0 {
		a.violations = append(a.violations, "recreate while mounted")
		return embed.ErrHandleMounted
	}
	a.recreations++
	return nil
}

func (a *fakeAdapter) Close() error { return nil }

func (a *fakeAdapter) last() *fakeHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handles[len(a.handles)-1]
}

func (a *fakeAdapter) mounted() []playlist.Video {
	a.mu.Lock()
	defer a.mu.Unlock()
	videos := make([]playlist.Video, len(a.handles))
	for i, h := range a.handles {
		videos[i] = h.video
	}
	return videos
}

func (a *fakeAdapter) calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.log...)
}

func (a *fakeAdapter) peak() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxLive
}

func (a *fakeAdapter) recreated() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recreations
}

type fixture struct {
	clock   clockwork.FakeClock
	adapter *fakeAdapter
	runtime *Runtime
}

func newFixture(t *testing.T, videos *playlist.Playlist, cfg Config, options ...Option) *fixture {
	t.Helper()

	f := &fixture{clock: clockwork.NewFakeClock(), adapter: &fakeAdapter{}}
	r, err := New(videos, f.adapter, cfg, append([]Option{WithClock(f.clock)}, options...)...)
	if err != nil {
		t.Fatal(err)
	}
	f.runtime = r
	return f
}

// step advances the clock once and waits for cond.
func (f *fixture) step(d time.Duration, cond func(Stats) bool) bool {
	f.clock.Advance(d)
	return eventually(func() bool { return cond(f.runtime.Stats()) })
}

// waiters blocks until the clock has n timers.
func (f *fixture) waiters(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.clock.BlockUntilContext(ctx, n)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
