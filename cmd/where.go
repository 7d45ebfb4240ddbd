package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/videowall/videowall/color"
	"github.com/videowall/videowall/style"
	"github.com/videowall/videowall/where"
)

// location is a path the wall reads or writes, selectable by flag.
type location struct {
	flag   string
	short  mo.Option[string]
	path   func() string
	hidden bool
}

var locations = []location{
	{flag: "config", short: mo.Some("c"), path: where.Config},
	{flag: "playlist", short: mo.Some("p"), path: where.Playlist},
	{flag: "logs", short: mo.Some("l"), path: where.Logs},
	{flag: "resume", path: where.Resume, hidden: true},
	{flag: "cache", path: where.Cache, hidden: true},
	{flag: "temp", path: where.Temp, hidden: true},
}

func init() {
	rootCmd.AddCommand(whereCmd)
	flags := whereCmd.Flags()

	for _, l := range locations {
		usage := "print the " + l.flag + " path"
		if short, ok := l.short.Get(); ok {
			flags.BoolP(l.flag, short, false, usage)
		} else {
			flags.Bool(l.flag, false, usage)
		}
		if l.hidden {
			lo.Must0(flags.MarkHidden(l.flag))
		}
	}
	flags.BoolP("json", "j", false, "print every path as a JSON object")

	whereCmd.MarkFlagsMutuallyExclusive(append(lo.Map(locations, func(l location, _ int) string {
		return l.flag
	}), "json")...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where the wall keeps its config, playlist and logs",
	Run: func(cmd *cobra.Command, args []string) {
		if selected, ok := lo.Find(locations, func(l location) bool {
			return lo.Must(cmd.Flags().GetBool(l.flag))
		}); ok {
			cmd.Println(selected.path())
			return
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			paths := lo.SliceToMap(locations, func(l location) (string, string) {
				return l.flag, l.path()
			})
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(paths))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(locations, func(l location, _ int) bool { return l.hidden })

		blocks := lo.Map(visible, func(l location, _ int) string {
			name := strings.ToUpper(l.flag[:1]) + l.flag[1:]
			return header(name+"?") + " " + style.Fg(color.Yellow)("--"+l.flag) + "\n" + l.path()
		})
		cmd.Println(strings.Join(blocks, "\n\n"))
	},
}
