// Package tui provides the terminal dashboard of the wall.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/videowall/videowall/wall"
)

// Controller is the part of the runtime the dashboard drives.
type Controller interface {
	Snapshot() wall.Snapshot
	LoadNextVideo() error
	GoBackInHistory() (bool, error)
	LoadRandomVideo() error
	TogglePlayPause() error
	LogMemoryUsage() wall.MemoryUsage
}

// Run executes the dashboard until the user quits or ctx is done.
func Run(ctx context.Context, bubble *Bubble) error {
	_, err := tea.NewProgram(
		bubble,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
