// Package sweep prunes expired files left behind by previous runs.
package sweep

import (
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/videowall/videowall/filesystem"
	"github.com/videowall/videowall/log"
	"github.com/videowall/videowall/where"
)

// Dir removes the regular files under dir last modified more than ttl
// before now. Directories are kept. It returns how many files were removed.
func Dir(dir string, ttl time.Duration, now time.Time) (int, error) {
	var removed int

	fs := filesystem.API()
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if now.Sub(info.ModTime()) <= ttl {
			return nil
		}
		if err := fs.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})

	return removed, err
}

// Logs removes log files older than the given number of days.
func Logs(days int) {
	if days <= 0 {
		return
	}

	removed, err := Dir(where.Logs(), time.Duration(days)*24*time.Hour, time.Now())
	if err != nil {
		log.Warnf("sweep logs: %s", err)
		return
	}
	if removed > 0 {
		log.Infof("removed %d expired log files", removed)
	}
}
