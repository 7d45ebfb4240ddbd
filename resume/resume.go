// Package resume remembers the last played playlist position across restarts.
package resume

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/videowall/videowall/filesystem"
	"github.com/videowall/videowall/log"
	"github.com/videowall/videowall/playlist"
	"github.com/videowall/videowall/wall"
	"github.com/videowall/videowall/where"
)

// Position is the persisted record of the most recently mounted video.
type Position struct {
	Index   int            `json:"index"`
	Video   playlist.Video `json:"video"`
	SavedAt time.Time      `json:"savedAt"`
}

var cacher = gache.New[*Position](
	&gache.Options{
		Path:       where.Resume(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the stored position, or nil when nothing was saved yet.
func Get() (*Position, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, nil
	}
	return cached, nil
}

// Save records video at index as the last played position.
func Save(index int, video playlist.Video) error {
	return cacher.Set(&Position{
		Index:   index,
		Video:   video,
		SavedAt: time.Now(),
	})
}

// Clear forgets the stored position.
func Clear() error {
	return cacher.Set(nil)
}

// StartIndex resolves the stored position against videos.
// The stored index wins when it still holds the same video, since the
// playlist may contain duplicates. Otherwise the first occurrence of the
// video is used. It reports false when the video is no longer listed.
func StartIndex(videos *playlist.Playlist) (int, bool) {
	saved, err := Get()
	if err != nil {
		log.Warnf("resume: read position: %s", err)
		return 0, false
	}
	if saved == nil {
		return 0, false
	}

	if saved.Index >= 0 && saved.Index < videos.Len() && videos.At(saved.Index).Same(saved.Video) {
		return saved.Index, true
	}

	if index := videos.IndexOf(saved.Video); index >= 0 {
		return index, true
	}

	return 0, false
}

// Observer saves the position each time a new session is created.
// Notifications may arrive out of order from different goroutines, so a
// session older than the last saved one is ignored.
func Observer() wall.Observer {
	var (
		mu   sync.Mutex
		last uint64
	)

	return func(n wall.Notification) {
		if n.Kind != wall.EventCreated {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		if n.Snapshot.Generation <= last {
			return
		}
		last = n.Snapshot.Generation

		if err := Save(n.Snapshot.CurrentVideoIndex, n.Snapshot.CurrentVideo); err != nil {
			log.Warnf("resume: save position: %s", err)
		}
	}
}
