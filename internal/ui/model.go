// Package ui provides internal state management and rendering utilities for ephemeral terminal notifications.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/videowall/videowall/color"
	"github.com/videowall/videowall/style"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

// Model encapsulates the state for displaying non-blocking terminal alerts.
type Model struct {
	notification string
	// seq ties a clear message to the notification it was scheduled for.
	seq int
}

// NotifyMsg carries the text of a new notification.
type NotifyMsg string

// ClearNotificationMsg is a Bubbletea message used to reset the visual notification state.
type ClearNotificationMsg struct {
	seq int
}

// Notify returns a tea.Cmd showing text as a notification.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return NotifyMsg(text)
	}
}

func clearAfter(seq int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{seq: seq}
	})
}

// Update processes incoming messages to modify the notification state.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotifyMsg:
		m.notification = string(msg)
		m.seq++
		return clearAfter(m.seq)
	case ClearNotificationMsg:
		// a newer notification keeps its own timer
		if msg.seq == m.seq {
			m.notification = ""
		}
	}
	return nil
}

// Current returns the notification on display, if any.
func (m *Model) Current() string {
	return m.notification
}

// View appends the current notification to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	notifier := style.Fg(color.Gray)(m.notification)
	lines[len(lines)-1] = lines[len(lines)-1] + "  " + notifier

	return strings.Join(lines, "\n")
}
