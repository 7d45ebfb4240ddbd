package wall

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/videowall/videowall/history"
	"github.com/videowall/videowall/key"
)

// Config holds the thresholds and timer windows of the runtime.
type Config struct {
	// MaxVideosBeforeRecreate is the number of video switches after which the
	// embed backend is fully recreated.
	MaxVideosBeforeRecreate int
	// MaxConsecutiveFailures is the failure ceiling. Reaching it skips the video.
	MaxConsecutiveFailures int
	VideoLoadTimeout       time.Duration
	WatchdogCheckInterval  time.Duration
	// StallThreshold is how long playback may show no progress.
	StallThreshold time.Duration
	// MaxZeroTimeChecks stalls a video stuck at position zero. 0 disables it.
	MaxZeroTimeChecks     int
	HistorySize           int
	RetryDelay            time.Duration
	MemoryMonitorInterval time.Duration
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		MaxVideosBeforeRecreate: 20,
		MaxConsecutiveFailures:  3,
		VideoLoadTimeout:        15 * time.Second,
		WatchdogCheckInterval:   10 * time.Second,
		StallThreshold:          30 * time.Second,
		MaxZeroTimeChecks:       4,
		HistorySize:             history.DefaultSize,
		RetryDelay:              2 * time.Second,
		MemoryMonitorInterval:   time.Minute,
	}
}

func millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}

// ConfigFromViper reads the wall.* keys.
func ConfigFromViper() Config {
	return Config{
		MaxVideosBeforeRecreate: viper.GetInt(key.WallMaxVideosBeforeRecreate),
		MaxConsecutiveFailures:  viper.GetInt(key.WallMaxConsecutiveFailures),
		VideoLoadTimeout:        millis(key.WallVideoLoadTimeout),
		WatchdogCheckInterval:   millis(key.WallWatchdogCheckInterval),
		StallThreshold:          millis(key.WallStallThreshold),
		MaxZeroTimeChecks:       viper.GetInt(key.WallMaxZeroTimeChecks),
		HistorySize:             viper.GetInt(key.WallHistorySize),
		RetryDelay:              millis(key.WallRetryDelay),
		MemoryMonitorInterval:   millis(key.WallMemoryMonitorInterval),
	}
}

// Validate rejects configurations the runtime cannot run with.
func (c Config) Validate() error {
	var errs []error

	positive := func(name string, v int64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	positive("max videos before recreate", int64(c.MaxVideosBeforeRecreate))
	positive("max consecutive failures", int64(c.MaxConsecutiveFailures))
	positive("video load timeout", int64(c.VideoLoadTimeout))
	positive("watchdog check interval", int64(c.WatchdogCheckInterval))
	positive("stall threshold", int64(c.StallThreshold))
	positive("history size", int64(c.HistorySize))
	positive("retry delay", int64(c.RetryDelay))

	if c.MaxZeroTimeChecks < 0 {
		errs = append(errs, fmt.Errorf("max zero time checks must not be negative, got %d", c.MaxZeroTimeChecks))
	}
	if c.MemoryMonitorInterval < 0 {
		errs = append(errs, fmt.Errorf("memory monitor interval must not be negative, got %s", c.MemoryMonitorInterval))
	}
	if c.StallThreshold > 0 && c.StallThreshold <= c.WatchdogCheckInterval {
		errs = append(errs, fmt.Errorf("stall threshold %s must exceed the watchdog interval %s", c.StallThreshold, c.WatchdogCheckInterval))
	}

	return errors.Join(errs...)
}
