package embed

import (
	"fmt"
	"sync"

	"github.com/videowall/videowall/playlist"
)

// Source turns a video descriptor of one provider into a playable target.
type Source interface {
	Provider() playlist.Provider
	// URL is the page the backend resolves through its ytdl hook.
	URL(id string) string
	// Properties are applied to the backend before the video is loaded.
	Properties(format string) map[string]string
	// OEmbed is the metadata endpoint describing the page at pageURL.
	OEmbed(pageURL string) string
}

var (
	sourcesMu sync.RWMutex
	sources   = map[playlist.Provider]Source{}
)

// Register makes a source available for its provider, replacing any previous one.
func Register(source Source) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sources[source.Provider()] = source
}

// SourceFor returns the source registered for provider.
func SourceFor(provider playlist.Provider) (Source, error) {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()

	source, ok := sources[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", playlist.ErrUnknownProvider, provider)
	}
	return source, nil
}

func init() {
	Register(youtube{})
	Register(vimeo{})
}
