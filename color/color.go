// Package color is the palette of the dashboard and the CLI output.
package color

import "github.com/charmbracelet/lipgloss"

func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")

	HiRed    = New("9")
	HiPurple = New("13")

	Orange = New("#ffb703")
	Gray   = New("#808080")

	// Banner colors of the dashboard title.
	BannerFg = New("230")
	BannerBg = New("62")
)

// ForState returns the color of a session state, keyed by its name.
func ForState(state string) lipgloss.Color {
	switch state {
	case "PLAYING":
		return Green
	case "CREATING", "READY":
		return Blue
	case "STALLED":
		return Yellow
	case "ERRORED":
		return Red
	case "ENDED":
		return Cyan
	default:
		return Gray
	}
}
