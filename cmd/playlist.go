package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/videowall/videowall/color"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/icon"
	"github.com/videowall/videowall/key"
	"github.com/videowall/videowall/log"
	"github.com/videowall/videowall/network"
	"github.com/videowall/videowall/open"
	"github.com/videowall/videowall/playlist"
	"github.com/videowall/videowall/style"
	"github.com/videowall/videowall/util"
	"github.com/videowall/videowall/where"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(playlistCmd)
}

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Inspect the playlist the wall cycles through",
}

func init() {
	playlistCmd.AddCommand(playlistListCmd)
	playlistListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	playlistListCmd.SetOut(os.Stdout)
}

var playlistListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the playlist entries in playback order",
	Run: func(cmd *cobra.Command, args []string) {
		videos, err := loadPlaylist()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(videos.Videos()))
			return
		}

		for i, video := range videos.Videos() {
			cmd.Printf(
				"%s %s %s\n",
				style.Faint(fmt.Sprintf("%3d", i)),
				style.Fg(color.Cyan)(fmt.Sprintf("%-8s", video.Provider.Name())),
				style.Fg(color.Purple)(video.Label()),
			)
		}

		counts := videos.Count()
		cmd.Println()
		cmd.Println(style.Faint(fmt.Sprintf(
			"%s, %d YouTube, %d Vimeo",
			util.Quantify(videos.Len(), "video", "videos"),
			counts[playlist.YouTube],
			counts[playlist.Vimeo],
		)))
	},
}

func init() {
	playlistCmd.AddCommand(playlistCheckCmd)
	playlistCheckCmd.Flags().Bool("online", false, "Ask each provider whether the video can still be embedded")
	playlistCheckCmd.SetOut(os.Stdout)
}

// onlineChecks bounds concurrent provider lookups.
const onlineChecks = 4

type checkResult struct {
	entry, detail string
	err           error
}

var playlistCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every entry and print the URL it resolves to",
	Run: func(cmd *cobra.Command, args []string) {
		entries := viper.GetStringSlice(key.PlaylistVideos)
		if path := viper.GetString(key.PlaylistFile); path != "" {
			videos, err := playlist.Load(path)
			handleErr(err)
			entries = lo.Map(videos.Videos(), func(v playlist.Video, _ int) string {
				return v.String()
			})
		}
		if len(entries) == 0 {
			handleErr(errors.New("the playlist is empty"))
		}

		results := make([]checkResult, len(entries))
		for i, entry := range entries {
			results[i] = checkEntry(entry)
		}

		if lo.Must(cmd.Flags().GetBool("online")) {
			lookupAll(cmd.Context(), results)
		}

		var failed int
		for _, r := range results {
			if r.err != nil {
				failed++
				cmd.Printf("%s %s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), r.entry, style.Fg(color.Red)(r.err.Error()))
				continue
			}
			cmd.Printf("%s %s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), r.entry, style.Faint(r.detail))
		}

		if failed > 0 {
			handleErr(fmt.Errorf("%s invalid", util.Quantify(failed, "entry is", "entries are")))
		}
	},
}

func checkEntry(entry string) checkResult {
	video, err := playlist.Parse(entry)
	if err != nil {
		return checkResult{entry: entry, err: err}
	}

	source, err := embed.SourceFor(video.Provider)
	if err != nil {
		return checkResult{entry: entry, err: err}
	}

	return checkResult{entry: entry, detail: source.URL(video.ID)}
}

// lookupAll replaces the detail of every valid result with the title the
// provider reports, or marks it failed.
func lookupAll(ctx context.Context, results []checkResult) {
	if ctx == nil {
		ctx = context.Background()
	}

	var g errgroup.Group
	g.SetLimit(onlineChecks)

	for i := range results {
		if results[i].err != nil {
			continue
		}

		g.Go(func() error {
			r := &results[i]
			video := lo.Must(playlist.Parse(r.entry))

			info, err := embed.Lookup(ctx, network.Client, video)
			if err != nil {
				log.Warnf("lookup %s: %s", r.entry, err)
				r.err = err
				return nil
			}

			r.detail = fmt.Sprintf("%s by %s", info.Title, info.Author)
			return nil
		})
	}

	_ = g.Wait()
}

func init() {
	playlistCmd.AddCommand(playlistWriteCmd)
	playlistWriteCmd.Flags().StringP("output", "o", "", "Destination file, defaults to the playlist path of where")
}

var playlistWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Save the configured playlist entries to a YAML file",
	Run: func(cmd *cobra.Command, args []string) {
		videos, err := playlist.FromEntries(viper.GetStringSlice(key.PlaylistVideos))
		handleErr(err)

		path := lo.Must(cmd.Flags().GetString("output"))
		if path == "" {
			path = where.Playlist()
		}

		handleErr(playlist.Save(path, videos))
		fmt.Printf(
			"%s wrote %s to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			util.Quantify(videos.Len(), "video", "videos"),
			path,
		)
	},
}

func init() {
	playlistCmd.AddCommand(playlistOpenCmd)
}

var playlistOpenCmd = &cobra.Command{
	Use:     "open [index]",
	Short:   "Open the page of a playlist entry in the browser",
	Example: "  videowall playlist open 3",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		videos, err := loadPlaylist()
		handleErr(err)

		index, err := strconv.Atoi(args[0])
		if err != nil || index < 0 || index >= videos.Len() {
			handleErr(fmt.Errorf("index must be between 0 and %d", videos.Len()-1))
		}

		video := videos.At(index)
		source, err := embed.SourceFor(video.Provider)
		handleErr(err)

		handleErr(open.Start(source.URL(video.ID)))
		fmt.Printf("%s opened %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(video.Label()))
	},
}
