// Package cmd implements the command-line interface of the video wall.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/videowall/videowall/color"
	"github.com/videowall/videowall/constant"
	"github.com/videowall/videowall/icon"
	"github.com/videowall/videowall/key"
	"github.com/videowall/videowall/log"
	"github.com/videowall/videowall/style"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (emoji, plain, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("playlist", "p", "", "Read the playlist from a YAML or JSON file")
	lo.Must0(viper.BindPFlag(key.PlaylistFile, rootCmd.PersistentFlags().Lookup("playlist")))

	rootCmd.Flags().Bool("simulate", false, "Play simulated embeds instead of starting mpv")
	lo.Must0(viper.BindPFlag(key.PlayerSimulate, rootCmd.Flags().Lookup("simulate")))

	rootCmd.Flags().StringP("listen", "l", "", "Serve the status and control API on this address")
	lo.Must0(viper.BindPFlag(key.HTTPListen, rootCmd.Flags().Lookup("listen")))

	rootCmd.Flags().Bool("shuffle", false, "Start from a random playlist position")
	lo.Must0(viper.BindPFlag(key.WallShuffleStart, rootCmd.Flags().Lookup("shuffle")))

	rootCmd.Flags().Bool("resume", true, "Start from the last played video")
	lo.Must0(viper.BindPFlag(key.WallResume, rootCmd.Flags().Lookup("resume")))

	rootCmd.Flags().Bool("headless", false, "Run without the dashboard. Implied when stdout is not a terminal")
	rootCmd.Flags().Float64("fault-rate", 0, "Probability of an injected failure per simulated mount")
}

// rootCmd runs the wall.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "A self-healing video wall cycling through YouTube and Vimeo embeds",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Plays a playlist forever, recovering from stalls, errors and leaks"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if !viper.GetBool(key.PlayerSimulate) {
			CheckDependencies(viper.GetString(key.PlayerBinary))
		}

		handleErr(runWall(cmd.Context(), runOptions{
			headless:  lo.Must(cmd.Flags().GetBool("headless")),
			faultRate: lo.Must(cmd.Flags().GetFloat64("fault-rate")),
		}))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
