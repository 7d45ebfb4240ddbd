// Package key names every configuration key.
package key

// Thresholds and timer windows of the player runtime.
const (
	WallMaxVideosBeforeRecreate = "wall.max_videos_before_recreate"
	WallMaxConsecutiveFailures  = "wall.max_consecutive_failures"
	WallVideoLoadTimeout        = "wall.video_load_timeout"
	WallWatchdogCheckInterval   = "wall.watchdog_check_interval"
	WallStallThreshold          = "wall.stall_threshold"
	WallMaxZeroTimeChecks       = "wall.max_zero_time_checks"
	WallHistorySize             = "wall.history_size"
	WallRetryDelay              = "wall.retry_delay"
	WallMemoryMonitorInterval   = "wall.memory_monitor_interval"
	WallResume                  = "wall.resume"
	WallShuffleStart            = "wall.shuffle_start"
)

const (
	PlaylistVideos = "playlist.videos"
	PlaylistFile   = "playlist.file"
)

// The mpv process backing the embeds.
const (
	PlayerBinary     = "player.binary"
	PlayerYtdlFormat = "player.ytdl_format"
	PlayerFullscreen = "player.fullscreen"
	PlayerSimulate   = "player.simulate"
)

const (
	HTTPListen = "http.listen"
)

const (
	LogsWrite     = "logs.write"
	LogsLevel     = "logs.level"
	LogsJson      = "logs.json"
	LogsRetention = "logs.retention"
)

const (
	CliColored = "cli.colored"
)

const (
	IconsVariant = "icons.variant"
)
