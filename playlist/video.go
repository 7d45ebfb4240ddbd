// Package playlist implements the immutable, ordered store of videos the wall cycles through.
package playlist

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Provider identifies the hosting service of a video.
type Provider string

const (
	YouTube Provider = "yt"
	Vimeo   Provider = "vimeo"
)

var (
	ErrUnknownProvider = errors.New("unknown video provider")
	ErrEmptyID         = errors.New("empty video id")
	ErrEmpty           = errors.New("playlist is empty")
)

// Providers returns every supported provider.
func Providers() []Provider {
	return []Provider{YouTube, Vimeo}
}

// Name returns the human readable provider name.
func (p Provider) Name() string {
	switch p {
	case YouTube:
		return "YouTube"
	case Vimeo:
		return "Vimeo"
	default:
		return string(p)
	}
}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	return p == YouTube || p == Vimeo
}

var providerAliases = map[string]Provider{
	"yt":      YouTube,
	"youtube": YouTube,
	"vimeo":   Vimeo,
}

// Video is a single immutable playlist entry. Identity is the (Provider, ID) pair.
type Video struct {
	Provider Provider `json:"type" yaml:"type"`
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
}

// String returns the compact provider:id form accepted by Parse.
func (v Video) String() string {
	return fmt.Sprintf("%s:%s", v.Provider, v.ID)
}

// Label returns the title when known and the compact form otherwise.
func (v Video) Label() string {
	if v.Title != "" {
		return v.Title
	}
	return v.String()
}

// Same reports whether two entries refer to the same video.
func (v Video) Same(other Video) bool {
	return v.Provider == other.Provider && v.ID == other.ID
}

// Validate checks the descriptor is playable by some adapter.
func (v Video) Validate() error {
	if !v.Provider.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, v.Provider)
	}
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("%s: %w", v.Provider, ErrEmptyID)
	}
	return nil
}

var (
	youtubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	vimeoID   = regexp.MustCompile(`^[0-9]+$`)
)

// Parse converts a playlist entry into a Video.
// Accepted forms are "yt:ID", "youtube:ID", "vimeo:ID" and full YouTube or Vimeo URLs.
func Parse(entry string) (Video, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return Video{}, ErrEmptyID
	}

	if strings.Contains(entry, "://") {
		return parseURL(entry)
	}

	prefix, id, ok := strings.Cut(entry, ":")
	if !ok {
		return Video{}, fmt.Errorf("%w: missing provider prefix in %q", ErrUnknownProvider, entry)
	}

	provider, ok := providerAliases[strings.ToLower(strings.TrimSpace(prefix))]
	if !ok {
		return Video{}, fmt.Errorf("%w: %q", ErrUnknownProvider, prefix)
	}

	v := Video{Provider: provider, ID: strings.TrimSpace(id)}
	return v, v.Validate()
}

func parseURL(raw string) (Video, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Video{}, fmt.Errorf("invalid video url: %w", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return checked(Video{Provider: YouTube, ID: id}, youtubeID)
		}
		if len(segments) == 2 && (segments[0] == "embed" || segments[0] == "shorts" || segments[0] == "live") {
			return checked(Video{Provider: YouTube, ID: segments[1]}, youtubeID)
		}
	case "youtu.be":
		if len(segments) == 1 {
			return checked(Video{Provider: YouTube, ID: segments[0]}, youtubeID)
		}
	case "vimeo.com":
		if len(segments) >= 1 {
			return checked(Video{Provider: Vimeo, ID: segments[len(segments)-1]}, vimeoID)
		}
	case "player.vimeo.com":
		if len(segments) == 2 && segments[0] == "video" {
			return checked(Video{Provider: Vimeo, ID: segments[1]}, vimeoID)
		}
	}

	return Video{}, fmt.Errorf("%w: unrecognized url %q", ErrUnknownProvider, raw)
}

func checked(v Video, pattern *regexp.Regexp) (Video, error) {
	if !pattern.MatchString(v.ID) {
		return Video{}, fmt.Errorf("%s: malformed id %q", v.Provider.Name(), v.ID)
	}
	return v, nil
}
