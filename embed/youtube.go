package embed

import (
	"net/url"

	"github.com/videowall/videowall/playlist"
)

type youtube struct{}

func (youtube) Provider() playlist.Provider { return playlist.YouTube }

func (youtube) URL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

func (youtube) Properties(format string) map[string]string {
	props := map[string]string{"ytdl-raw-options": "no-playlist="}
	if format != "" {
		props["ytdl-format"] = format
	}
	return props
}

func (youtube) OEmbed(pageURL string) string {
	return "https://www.youtube.com/oembed?format=json&url=" + url.QueryEscape(pageURL)
}
