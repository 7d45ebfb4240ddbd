package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/videowall/videowall/internal/ui"
	"github.com/videowall/videowall/wall"
)

// notificationBuffer bounds the transitions queued for the dashboard.
// Older ones are dropped when it is full; the snapshot refresh catches up.
const notificationBuffer = 32

// Bubble is the dashboard model.
type Bubble struct {
	controller Controller
	keymap     *keymap
	helpC      help.Model
	notifier   *ui.Model

	feed Feed

	snapshot wall.Snapshot
	// last is the most recent transition worth displaying.
	last *wall.Notification
	// busy counts navigation requests still in flight.
	busy int

	width, height int
}

// Feed carries runtime transitions to a dashboard. It exists before the
// runtime so that its Observer can be passed to wall.New.
type Feed chan wall.Notification

// NewFeed returns an empty feed.
func NewFeed() Feed {
	return make(Feed, notificationBuffer)
}

// Observer forwards transitions to the feed without blocking the runtime.
func (f Feed) Observer() wall.Observer {
	return func(n wall.Notification) {
		select {
		case f <- n:
		default:
		}
	}
}

// New returns a dashboard driving controller and following feed.
func New(controller Controller, feed Feed) *Bubble {
	return &Bubble{
		controller: controller,
		keymap:     newKeymap(),
		helpC:      help.New(),
		notifier:   &ui.Model{},
		feed:       feed,
		snapshot:   controller.Snapshot(),
	}
}

func (b *Bubble) resize(width, height int) {
	b.width = width
	b.height = height
	b.helpC.Width = width
}
