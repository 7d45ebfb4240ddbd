package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/videowall/videowall/internal/ui"
	"github.com/videowall/videowall/wall"
)

func (b *Bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case notificationMsg:
		n := wall.Notification(msg)
		b.snapshot = n.Snapshot
		if n.Kind != wall.EventChecked || n.Verdict == wall.VerdictStalled {
			b.last = &n
		}
		cmds = append(cmds, b.waitForNotification())
	case refreshMsg:
		b.snapshot = b.controller.Snapshot()
		cmds = append(cmds, refresh())
	case actionMsg:
		b.busy = max(0, b.busy-1)
		b.snapshot = b.controller.Snapshot()
		switch {
		case msg.err != nil:
			cmds = append(cmds, ui.Notify(fmt.Sprintf("%s: %s", msg.name, msg.err)))
		case !msg.moved:
			cmds = append(cmds, ui.Notify("history is empty"))
		}
	case memoryMsg:
		cmds = append(cmds, ui.Notify(wall.MemoryUsage(msg).String()))
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			cmds = append(cmds, b.navigate(b.next()))
		}
	case tea.KeyMsg:
		cmds = append(cmds, b.handleKey(msg))
	}

	return b, tea.Batch(cmds...)
}

func (b *Bubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.quit, b.keymap.forceQuit):
		return tea.Quit
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case key.Matches(msg, b.keymap.next):
		return b.navigate(b.next())
	case key.Matches(msg, b.keymap.back):
		return b.navigate(b.back())
	case key.Matches(msg, b.keymap.random):
		return b.navigate(b.random())
	case key.Matches(msg, b.keymap.pause):
		return b.navigate(b.togglePause())
	case key.Matches(msg, b.keymap.memory):
		return b.memory()
	case key.Matches(msg, b.keymap.openPage):
		return b.navigate(b.openPage())
	}
	return nil
}

func (b *Bubble) navigate(cmd tea.Cmd) tea.Cmd {
	b.busy++
	return cmd
}
