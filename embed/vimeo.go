package embed

import (
	"net/url"
	"strings"

	"github.com/videowall/videowall/playlist"
)

type vimeo struct{}

func (vimeo) Provider() playlist.Provider { return playlist.Vimeo }

func (vimeo) URL(id string) string {
	return "https://vimeo.com/" + url.PathEscape(id)
}

// Vimeo serves muxed HLS renditions, so the selector falls back to best muxed.
func (vimeo) Properties(format string) map[string]string {
	props := map[string]string{"ytdl-raw-options": "referer=https://vimeo.com/"}
	switch {
	case format == "":
	case strings.HasSuffix(format, "/best"):
		props["ytdl-format"] = format
	default:
		props["ytdl-format"] = format + "/best"
	}
	return props
}

func (vimeo) OEmbed(pageURL string) string {
	return "https://vimeo.com/api/oembed.json?url=" + url.QueryEscape(pageURL)
}
