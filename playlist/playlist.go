package playlist

import (
	"fmt"

	"github.com/samber/lo"
)

// Playlist is an immutable ordered list of videos. Duplicates are allowed.
type Playlist struct {
	videos []Video
}

// New validates and freezes the given videos.
func New(videos []Video) (*Playlist, error) {
	if len(videos) == 0 {
		return nil, ErrEmpty
	}

	for i, v := range videos {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return &Playlist{videos: append([]Video(nil), videos...)}, nil
}

// FromEntries parses compact entries ("yt:ID", URLs) into a playlist.
func FromEntries(entries []string) (*Playlist, error) {
	videos := make([]Video, 0, len(entries))
	for i, entry := range entries {
		v, err := Parse(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		videos = append(videos, v)
	}
	return New(videos)
}

// Len returns the number of entries.
func (p *Playlist) Len() int {
	return len(p.videos)
}

// At returns the entry at index i, which must be in [0, Len()).
func (p *Playlist) At(i int) Video {
	return p.videos[i]
}

// Videos returns a copy of all entries.
func (p *Playlist) Videos() []Video {
	return append([]Video(nil), p.videos...)
}

// Next returns the index following i, wrapping to 0 after the last entry.
func (p *Playlist) Next(i int) int {
	return (i + 1) % len(p.videos)
}

// IndexOf returns the first index holding the same video, or -1.
func (p *Playlist) IndexOf(v Video) int {
	_, idx, ok := lo.FindIndexOf(p.videos, func(item Video) bool {
		return item.Same(v)
	})
	if !ok {
		return -1
	}
	return idx
}

// Count returns how many entries each provider contributes.
func (p *Playlist) Count() map[Provider]int {
	return lo.CountValuesBy(p.videos, func(v Video) Provider {
		return v.Provider
	})
}
