package embed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/videowall/videowall/playlist"
)

// ErrUnavailable is returned when a provider reports that a video is
// private, removed or not embeddable.
var ErrUnavailable = errors.New("video unavailable")

// Info is the oEmbed description of a video page.
type Info struct {
	Title     string `json:"title"`
	Author    string `json:"author_name"`
	Provider  string `json:"provider_name"`
	Thumbnail string `json:"thumbnail_url"`
}

// Lookup asks the provider of video for its oEmbed description.
func Lookup(ctx context.Context, client *http.Client, video playlist.Video) (Info, error) {
	source, err := SourceFor(video.Provider)
	if err != nil {
		return Info{}, err
	}

	return fetchInfo(ctx, client, source.OEmbed(source.URL(video.ID)))
}

func fetchInfo(ctx context.Context, client *http.Client, endpoint string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Info{}, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return Info{}, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return Info{}, fmt.Errorf("%w: %s", ErrUnavailable, res.Status)
	default:
		return Info{}, fmt.Errorf("oembed: unexpected status %s", res.Status)
	}

	var info Info
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("oembed: %w", err)
	}

	return info, nil
}
