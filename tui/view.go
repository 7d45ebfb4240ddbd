package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/videowall/videowall/color"
	"github.com/videowall/videowall/icon"
	"github.com/videowall/videowall/style"
	"github.com/videowall/videowall/wall"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *Bubble) View() string {
	s := b.snapshot
	video := s.CurrentVideo

	lines := []string{
		style.Title("Video Wall"),
		"",
		fmt.Sprintf("%s %s", b.stateIcon(), style.Fg(color.Purple)(video.Label())),
		style.Faint(fmt.Sprintf("%s · %s · %d of %d", video.Provider.Name(), video.ID, s.CurrentVideoIndex+1, len(s.Videos))),
		"",
		fmt.Sprintf("%s %s  %s", style.Bold("State"), style.State(s.State.String()), position(s)),
		fmt.Sprintf("%s %d  %s %d  %s %d",
			style.Bold("Failures"), s.ConsecutiveFailures,
			style.Bold("Played since recreation"), s.VideoCount,
			style.Bold("History"), len(s.History),
		),
		style.Faint(fmt.Sprintf("played %d · skipped %d · stalls %d · recreations %d",
			s.Stats.Playing, s.Stats.Skips, s.Stats.Stalls, s.Stats.Recreations,
		)),
		"",
		b.lastEvent(),
	}

	if b.width > 4 {
		for i, line := range lines {
			lines[i] = truncate.StringWithTail(line, uint(b.width-4), "…")
		}
	}

	return b.notifier.View(b.renderLines(lines))
}

func (b *Bubble) stateIcon() string {
	if b.busy > 0 {
		return icon.Get(icon.Progress)
	}

	switch b.snapshot.State {
	case wall.Playing:
		if b.snapshot.Player.Paused {
			return icon.Get(icon.Pause)
		}
		return icon.Get(icon.Play)
	case wall.Stalled:
		return icon.Get(icon.Stall)
	case wall.Errored:
		return icon.Get(icon.Fail)
	case wall.Ended:
		return icon.Get(icon.Success)
	default:
		return icon.Get(icon.Progress)
	}
}

func (b *Bubble) lastEvent() string {
	n := b.last
	if n == nil {
		return ""
	}

	switch n.Kind {
	case wall.EventFailure:
		text := fmt.Sprintf("%s %s of #%d, %s", icon.Get(icon.Fail), n.Failure.Kind, n.Failure.Index+1, n.Action)
		return style.Fg(color.Red)(text)
	case wall.EventRecreated:
		return style.Fg(color.Cyan)(fmt.Sprintf("%s player recreated (%s)", icon.Get(icon.Recreate), n.Reason))
	case wall.EventChecked:
		return style.Fg(color.Yellow)(fmt.Sprintf("%s playback %s", icon.Get(icon.Stall), n.Verdict))
	default:
		return style.Faint(n.Kind.String())
	}
}

// position renders the playback position as elapsed / duration.
func position(s wall.Snapshot) string {
	if !s.Player.Ready {
		return ""
	}

	elapsed := seconds(s.Player.CurrentTime)
	if s.Player.Duration <= 0 {
		return elapsed
	}
	return elapsed + " / " + seconds(s.Player.Duration)
}

func seconds(v float64) string {
	return (time.Duration(v * float64(time.Second))).Truncate(time.Second).String()
}

func (b *Bubble) renderLines(lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if b.height > h+4 {
		l += strings.Repeat("\n", b.height-h-4)
	}
	l += "\n" + b.helpC.View(b.keymap)

	return paddingStyle.Render(l)
}
