package wall

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ticker runs fn on every tick until stopped.
type ticker struct {
	t    clockwork.Ticker
	quit chan struct{}
	once sync.Once
}

func newTicker(clock clockwork.Clock, interval time.Duration, fn func()) *ticker {
	t := &ticker{
		t:    clock.NewTicker(interval),
		quit: make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-t.quit:
				return
			case <-t.t.Chan():
				select {
				case <-t.quit:
					return
				default:
				}
				fn()
			}
		}
	}()

	return t
}

// stop does not wait for a running fn.
func (t *ticker) stop() {
	t.once.Do(func() {
		t.t.Stop()
		close(t.quit)
	})
}
