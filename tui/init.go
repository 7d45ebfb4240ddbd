package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/open"
	"github.com/videowall/videowall/wall"
)

// refreshInterval paces the redraw of the playback position.
const refreshInterval = time.Second

type (
	notificationMsg wall.Notification
	refreshMsg      time.Time
	actionMsg       struct {
		name string
		err  error
		// moved is false when a back request found no history.
		moved bool
	}
	memoryMsg wall.MemoryUsage
)

// Init starts listening for transitions and refreshing the position.
func (b *Bubble) Init() tea.Cmd {
	return tea.Batch(b.waitForNotification(), refresh())
}

func (b *Bubble) waitForNotification() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-b.feed)
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Navigation runs outside of Update since it unmounts and mounts embeds.

func (b *Bubble) next() tea.Cmd {
	return func() tea.Msg {
		return actionMsg{name: "next", err: b.controller.LoadNextVideo(), moved: true}
	}
}

func (b *Bubble) back() tea.Cmd {
	return func() tea.Msg {
		moved, err := b.controller.GoBackInHistory()
		return actionMsg{name: "back", err: err, moved: moved}
	}
}

func (b *Bubble) random() tea.Cmd {
	return func() tea.Msg {
		return actionMsg{name: "random", err: b.controller.LoadRandomVideo(), moved: true}
	}
}

func (b *Bubble) togglePause() tea.Cmd {
	return func() tea.Msg {
		return actionMsg{name: "pause", err: b.controller.TogglePlayPause(), moved: true}
	}
}

// openPage opens the page of the current video in the browser.
func (b *Bubble) openPage() tea.Cmd {
	video := b.snapshot.CurrentVideo
	return func() tea.Msg {
		source, err := embed.SourceFor(video.Provider)
		if err == nil {
			err = open.Start(source.URL(video.ID))
		}
		return actionMsg{name: "open", err: err, moved: true}
	}
}

func (b *Bubble) memory() tea.Cmd {
	return func() tea.Msg {
		return memoryMsg(b.controller.LogMemoryUsage())
	}
}
