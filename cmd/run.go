package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"github.com/videowall/videowall/color"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/icon"
	"github.com/videowall/videowall/key"
	"github.com/videowall/videowall/log"
	"github.com/videowall/videowall/metrics"
	"github.com/videowall/videowall/player"
	"github.com/videowall/videowall/playlist"
	"github.com/videowall/videowall/resume"
	"github.com/videowall/videowall/server"
	"github.com/videowall/videowall/style"
	"github.com/videowall/videowall/tui"
	"github.com/videowall/videowall/wall"
	"github.com/videowall/videowall/where"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// runOptions are the root command flags that are not configuration keys.
type runOptions struct {
	headless  bool
	faultRate float64
}

// loadPlaylist reads the playlist file when one is configured and the
// playlist.videos entries otherwise.
func loadPlaylist() (*playlist.Playlist, error) {
	if path := viper.GetString(key.PlaylistFile); path != "" {
		videos, err := playlist.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load playlist %s: %w", path, err)
		}
		return videos, nil
	}

	return playlist.FromEntries(viper.GetStringSlice(key.PlaylistVideos))
}

func newAdapter(faultRate float64) embed.Adapter {
	if viper.GetBool(key.PlayerSimulate) {
		return embed.NewSim(embed.SimOptions{FailureRate: faultRate})
	}

	return embed.NewMPV(embed.MPVOptions{
		Player: player.Options{
			Binary:     viper.GetString(key.PlayerBinary),
			SocketDir:  where.Temp(),
			Fullscreen: viper.GetBool(key.PlayerFullscreen),
		},
		YtdlFormat: viper.GetString(key.PlayerYtdlFormat),
	})
}

// startIndex picks the first video: the resumed position, a random one when
// shuffling, or the head of the playlist.
func startIndex(videos *playlist.Playlist) int {
	if viper.GetBool(key.WallResume) {
		if index, ok := resume.StartIndex(videos); ok {
			log.Infof("resuming at video %d", index)
			return index
		}
	}

	if viper.GetBool(key.WallShuffleStart) {
		return rand.IntN(videos.Len())
	}

	return 0
}

func runWall(ctx context.Context, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	headless := opts.headless || !term.IsTerminal(int(os.Stdout.Fd()))

	cfg := wall.ConfigFromViper()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	videos, err := loadPlaylist()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	options := []wall.Option{
		wall.WithStartIndex(startIndex(videos)),
		wall.WithObserver(metrics.New(registry).Observe),
	}
	if viper.GetBool(key.WallResume) {
		options = append(options, wall.WithObserver(resume.Observer()))
	}

	var feed tui.Feed
	if !headless {
		feed = tui.NewFeed()
		options = append(options, wall.WithObserver(feed.Observer()))
	}

	adapter := newAdapter(opts.faultRate)
	runtime, err := wall.New(videos, adapter, cfg, options...)
	if err != nil {
		return errors.Join(err, adapter.Close())
	}

	// The runtime must release its session before the adapter goes away.
	defer func() {
		runtime.Close()
		if err := adapter.Close(); err != nil {
			log.Warnf("close embed adapter: %s", err)
		}
	}()

	log.With(log.Fields{
		"videos":    videos.Len(),
		"start":     runtime.CurrentVideoIndex(),
		"simulated": viper.GetBool(key.PlayerSimulate),
		"headless":  headless,
	}).Info("starting wall")

	if err := runtime.CreatePlayer(); err != nil {
		return fmt.Errorf("create player: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runtime.RunMemoryMonitor(ctx)
	})

	if addr := viper.GetString(key.HTTPListen); addr != "" {
		api := server.New(runtime, registry)
		g.Go(func() error {
			return api.Run(ctx, addr)
		})
	}

	if headless {
		fmt.Printf(
			"%s playing %s, press ctrl+c to stop\n",
			style.Fg(color.Green)(icon.Get(icon.Play)),
			style.Fg(color.Purple)(runtime.CurrentVideo().Label()),
		)
		g.Go(func() error {
			<-ctx.Done()
			return nil
		})
	} else {
		g.Go(func() error {
			// quitting the dashboard stops the wall
			defer stop()
			return tui.Run(ctx, tui.New(runtime, feed))
		})
	}

	return g.Wait()
}
