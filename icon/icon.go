// Package icon provides a small multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, plain ASCII, or Unicode squares depending on user preference.
package icon

import (
	"github.com/spf13/viper"
	"github.com/videowall/videowall/key"
)

const (
	emoji   = "emoji"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, plain, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Play
	Pause
	Stall
	Recreate
)

type iconDef struct {
	emoji   string
	plain   string
	squares string
}

func (d *iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "🎉", plain: "✓", squares: "🟩"},
	Fail:     {emoji: "💀", plain: "✖", squares: "🟥"},
	Progress: {emoji: "⏳", plain: "…", squares: "🟦"},
	Play:     {emoji: "▶️", plain: ">", squares: "🟢"},
	Pause:    {emoji: "⏸️", plain: "||", squares: "🟡"},
	Stall:    {emoji: "🧊", plain: "!", squares: "🟧"},
	Recreate: {emoji: "♻️", plain: "~", squares: "🟪"},
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.get()
}
