package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/metrics"
	"github.com/videowall/videowall/playlist"
	"github.com/videowall/videowall/wall"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeController struct {
	calls     []string
	err       error
	canGoBack bool
}

func (c *fakeController) Snapshot() wall.Snapshot {
	return wall.Snapshot{CurrentVideoIndex: len(c.calls), State: wall.Playing}
}

func (c *fakeController) LoadNextVideo() error {
	c.calls = append(c.calls, "next")
	return c.err
}

func (c *fakeController) GoBackInHistory() (bool, error) {
	c.calls = append(c.calls, "back")
	return c.canGoBack, c.err
}

func (c *fakeController) LoadRandomVideo() error {
	c.calls = append(c.calls, "random")
	return c.err
}

func (c *fakeController) TogglePlayPause() error {
	c.calls = append(c.calls, "pause")
	return c.err
}

func (c *fakeController) LogMemoryUsage() wall.MemoryUsage {
	return wall.MemoryUsage{Goroutines: 7}
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	Convey("Given a server over a fake controller", t, func() {
		c := &fakeController{canGoBack: true}
		s := New(c, nil)

		Convey("GET /healthz answers ok", func() {
			rec := do(s, http.MethodGet, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("GET /status returns the snapshot", func() {
			rec := do(s, http.MethodGet, "/status")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json")

			var body map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body["state"], ShouldEqual, "PLAYING")
			So(body, ShouldContainKey, "currentVideoIndex")
		})

		Convey("Navigation routes call the controller", func() {
			for _, route := range []string{"next", "back", "random", "pause"} {
				rec := do(s, http.MethodPost, "/player/"+route)
				So(rec.Code, ShouldEqual, http.StatusOK)
			}
			So(c.calls, ShouldResemble, []string{"next", "back", "random", "pause"})
		})

		Convey("Navigation requires POST", func() {
			rec := do(s, http.MethodGet, "/player/next")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(c.calls, ShouldBeEmpty)
		})

		Convey("Going back with an empty history conflicts", func() {
			c.canGoBack = false
			rec := do(s, http.MethodPost, "/player/back")
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("Errors map to status codes", func() {
			c.err = wall.ErrNoSession
			So(do(s, http.MethodPost, "/player/pause").Code, ShouldEqual, http.StatusConflict)

			c.err = wall.ErrClosed
			So(do(s, http.MethodPost, "/player/next").Code, ShouldEqual, http.StatusServiceUnavailable)

			c.err = errors.New("boom")
			So(do(s, http.MethodPost, "/player/random").Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("GET /memory reports usage", func() {
			rec := do(s, http.MethodGet, "/memory")
			So(rec.Body.String(), ShouldContainSubstring, `"goroutines":7`)
		})

		Convey("Navigation is rate limited per client", func() {
			for range navigationLimit {
				So(do(s, http.MethodPost, "/player/next").Code, ShouldEqual, http.StatusOK)
			}

			rec := do(s, http.MethodPost, "/player/next")
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(rec.Header().Get("Retry-After"), ShouldEqual, "60")
			So(len(c.calls), ShouldEqual, navigationLimit)

			So(do(s, http.MethodGet, "/status").Code, ShouldEqual, http.StatusOK)
		})

		Convey("/metrics is absent without a gatherer", func() {
			So(do(s, http.MethodGet, "/metrics").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestWithRuntime(t *testing.T) {
	Convey("Given a server over a simulated wall", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		sim := embed.NewSim(embed.SimOptions{Clock: clockwork.NewFakeClock()})
		defer sim.Close()

		videos := lo.Must(playlist.FromEntries([]string{"yt:dQw4w9WgXcQ", "vimeo:76979871"}))
		runtime := lo.Must(wall.New(videos, sim, wall.DefaultConfig(), wall.WithObserver(m.Observe)))
		defer runtime.Close()

		So(runtime.CreatePlayer(), ShouldBeNil)
		s := New(runtime, reg)

		Convey("POST /player/next advances the wall", func() {
			rec := do(s, http.MethodPost, "/player/next")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(runtime.CurrentVideoIndex(), ShouldEqual, 1)

			var snapshot wall.Snapshot
			So(json.Unmarshal(rec.Body.Bytes(), &snapshot), ShouldBeNil)
			So(snapshot.CurrentVideo.String(), ShouldEqual, "vimeo:76979871")
			So(snapshot.CanGoBack, ShouldBeTrue)
		})

		Convey("GET /metrics exposes the runtime counters", func() {
			do(s, http.MethodPost, "/player/next")
			rec := do(s, http.MethodGet, "/metrics")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "videowall_sessions_created_total 2")
			So(strings.Contains(rec.Body.String(), "videowall_current_video_index 1"), ShouldBeTrue)
		})
	})
}
