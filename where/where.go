// Package where resolves the directories and files the wall reads and
// writes. Directories are created on first use.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/videowall/videowall/constant"
	"github.com/videowall/videowall/filesystem"
)

// EnvConfigPath overrides the config directory.
const EnvConfigPath = "VIDEOWALL_CONFIG_PATH"

func mkdir(elem ...string) string {
	path := filepath.Join(elem...)
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// base returns the user directory from resolve, or fallback when the
// platform has none.
func base(resolve func() (string, error), fallback string) string {
	if dir, err := resolve(); err == nil && dir != "" {
		return dir
	}
	return fallback
}

// Config holds the config file, the playlist and the logs.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok && custom != "" {
		return mkdir(custom)
	}
	return mkdir(base(os.UserConfigDir, "."), constant.App)
}

// Cache holds state that can be deleted at any time, such as the resume position.
func Cache() string {
	return mkdir(base(os.UserCacheDir, filepath.Join(".", "cache")), constant.App)
}

func Logs() string {
	return mkdir(Config(), "logs")
}

// Playlist is the default playlist file.
func Playlist() string {
	return filepath.Join(Config(), "playlist.yaml")
}

// Resume is the file remembering the last mounted playlist position.
func Resume() string {
	return filepath.Join(Cache(), "resume.json")
}

// Temp holds the mpv IPC sockets.
func Temp() string {
	return mkdir(os.TempDir(), constant.App)
}
