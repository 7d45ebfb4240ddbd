package embed

import (
	"sync"
	"time"

	"github.com/videowall/videowall/player"
)

// eventually polls cond for up to two seconds.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// recorder collects listener events.
type recorder struct {
	events chan Event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan Event, 16)}
}

func (r *recorder) listen(e Event) { r.events <- e }

func (r *recorder) next() (Event, bool) {
	select {
	case e := <-r.events:
		return e, true
	case <-time.After(2 * time.Second):
		return Event{}, false
	}
}

func (r *recorder) none() bool {
	select {
	case <-r.events:
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

// fakePlayer stands in for an mpv process.
type fakePlayer struct {
	mu       sync.Mutex
	starts   int
	stops    int
	toggles  int
	closes   int
	targets  []string
	props    []map[string]string
	callback player.EventCallback
	exited   chan struct{}
	startErr error
}

func newFakePlayer() *fakePlayer {
	exited := make(chan struct{})
	close(exited)
	return &fakePlayer{exited: exited}
}

func (p *fakePlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
	if p.startErr != nil {
		return p.startErr
	}
	p.exited = make(chan struct{})
	return nil
}

func (p *fakePlayer) Load(target string, _ string, properties map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets = append(p.targets, target)
	p.props = append(p.props, properties)
	return nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

func (p *fakePlayer) TogglePause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toggles++
	return nil
}

func (p *fakePlayer) Listen(callback player.EventCallback) (player.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = callback
	return fakeSubscription{p}, nil
}

func (p *fakePlayer) IsRunning() bool {
	select {
	case <-p.Wait():
		return false
	default:
		return true
	}
}

func (p *fakePlayer) Pid() int { return 1 }

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	p.exit()
	return nil
}

func (p *fakePlayer) Wait() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

// exit must be called with p.mu held.
func (p *fakePlayer) exit() {
	select {
	case <-p.exited:
	default:
		close(p.exited)
	}
}

func (p *fakePlayer) crash() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exit()
}

func (p *fakePlayer) fire(e player.Event) {
	p.mu.Lock()
	callback := p.callback
	p.mu.Unlock()
	if callback != nil {
		callback(e)
	}
}

func (p *fakePlayer) count(field *int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *field
}

func (p *fakePlayer) loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.targets...)
}

type fakeSubscription struct{ p *fakePlayer }

func (s fakeSubscription) Stop() {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.callback = nil
}
