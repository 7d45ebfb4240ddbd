package config

import (
	"github.com/videowall/videowall/key"
	"github.com/videowall/videowall/playlist"
)

// Default maps every config key to its field.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("config: key registered twice: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.WallMaxVideosBeforeRecreate, 20, "Videos played before the embed backend is torn down and rebuilt")
	register(key.WallMaxConsecutiveFailures, 3, "Consecutive load timeouts, errors or stalls before the video is skipped")
	register(key.WallVideoLoadTimeout, 15000, "Milliseconds an embed may take to become ready")
	register(key.WallWatchdogCheckInterval, 10000, "Milliseconds between watchdog progress checks")
	register(key.WallStallThreshold, 30000, "Milliseconds without playback progress before a stall is declared.\nKeep it well above the watchdog interval")
	register(key.WallMaxZeroTimeChecks, 4, "Consecutive watchdog checks at position zero before a stall is declared.\nSet to 0 to disable")
	register(key.WallHistorySize, 50, "Number of previously played videos remembered for going back")
	register(key.WallRetryDelay, 2000, "Milliseconds to wait before handling an embed that failed to mount")
	register(key.WallMemoryMonitorInterval, 60000, "Milliseconds between memory usage reports.\nSet to 0 to disable")
	register(key.WallResume, true, "Resume from the last played video after a restart")
	register(key.WallShuffleStart, false, "Start from a random playlist position")
	register(key.PlaylistVideos, playlist.DefaultEntries(), "Playlist entries as yt:ID, vimeo:ID or full video URLs")
	register(key.PlaylistFile, "", "Path to a YAML or JSON playlist file.\nOverrides playlist.videos when set")
	register(key.PlayerBinary, "mpv", "mpv executable used to play the embeds")
	register(key.PlayerYtdlFormat, "bestvideo[height<=?1080]+bestaudio/best", "ytdl format selector passed to mpv")
	register(key.PlayerFullscreen, true, "Start mpv fullscreen")
	register(key.PlayerSimulate, false, "Use simulated embeds instead of mpv")
	register(key.HTTPListen, "", "Address of the status and control API, e.g. 127.0.0.1:8090.\nDisabled when empty")
	register(key.LogsWrite, true, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.LogsRetention, 14, "Days to keep log files.\nSet to 0 to keep them forever")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, squares")
}
