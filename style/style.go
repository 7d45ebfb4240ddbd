// Package style renders text with lipgloss using the color palette.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/videowall/videowall/color"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a renderer that paints text in c.
func Fg(c lipgloss.Color) func(string) string {
	s := New().Foreground(c)
	return func(text string) string { return s.Render(text) }
}

var (
	Faint = New().Faint(true).Render
	Bold  = New().Bold(true).Render
)

// Title renders the dashboard banner.
func Title(text string) string {
	return New().Foreground(color.BannerFg).Background(color.BannerBg).Padding(0, 1).Render(text)
}

// State renders a session state name in its color.
func State(state string) string {
	return New().Bold(true).Foreground(color.ForState(state)).Render(state)
}
