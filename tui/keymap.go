package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/videowall/videowall/color"
	"github.com/videowall/videowall/style"
)

// keymap defines the keyboard interactions of the dashboard.
type keymap struct {
	next, back, pause, random, memory, openPage,
	quit, forceQuit,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		next: key.NewBinding(
			key.WithKeys(" ", "n", "right", "l"),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("next")),
		),
		back: key.NewBinding(
			key.WithKeys("b", "left", "h"),
			key.WithHelp("b", "back"),
		),
		pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "play/pause"),
		),
		random: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "random"),
		),
		memory: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "memory"),
		),
		openPage: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open page"),
		),
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.back, k.pause, k.random, k.quit, k.showHelp}
}

// FullHelp implements help.KeyMap.
func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.back, k.random},
		{k.pause, k.memory, k.openPage},
		{k.quit, k.forceQuit, k.showHelp},
	}
}
