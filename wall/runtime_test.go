package wall

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/videowall/videowall/embed"
	"github.com/videowall/videowall/playlist"
	"go.uber.org/goleak"

	. "github.com/smartystreets/goconvey/convey"
)

func indices(videos []playlist.Video, pl *playlist.Playlist) []int {
	return lo.Map(videos, func(v playlist.Video, _ int) int { return pl.IndexOf(v) })
}

func TestNew(t *testing.T) {
	Convey("New", t, func() {
		Convey("Rejects an empty playlist", func() {
			_, err := New(nil, &fakeAdapter{}, testConfig())
			So(err, ShouldEqual, ErrEmptyPlaylist)
		})

		Convey("Rejects an invalid configuration", func() {
			cfg := testConfig()
			cfg.MaxConsecutiveFailures = 0
			_, err := New(threeVideos(), &fakeAdapter{}, cfg)
			So(err, ShouldNotBeNil)
		})

		Convey("Starts without a session at the requested index", func() {
			f := newFixture(t, threeVideos(), testConfig(), WithStartIndex(2))
			So(f.runtime.CurrentVideoIndex(), ShouldEqual, 2)
			So(f.runtime.CurrentVideo(), ShouldResemble, videoC)
			So(f.runtime.State(), ShouldEqual, Destroyed)
			So(f.adapter.calls(), ShouldBeEmpty)
		})

		Convey("Ignores an out of range start index", func() {
			f := newFixture(t, threeVideos(), testConfig(), WithStartIndex(7))
			So(f.runtime.CurrentVideoIndex(), ShouldEqual, 0)
		})
	})
}

func TestController(t *testing.T) {
	Convey("Given a runtime over three videos", t, func() {
		pl := threeVideos()
		f := newFixture(t, pl, testConfig())
		r := f.runtime
		defer r.Close()

		So(r.CreatePlayer(), ShouldBeNil)

		Convey("The first session is creating", func() {
			So(r.State(), ShouldEqual, Creating)
			So(f.adapter.mounted(), ShouldResemble, []playlist.Video{videoA})
		})

		Convey("A second create is rejected", func() {
			So(r.CreatePlayer(), ShouldEqual, ErrSessionActive)
			So(len(f.adapter.mounted()), ShouldEqual, 1)
		})

		Convey("Ready makes it playing and resets the failure counter", func() {
			r.HandleVideoError(errors.New("boom"))
			So(r.ConsecutiveFailures(), ShouldEqual, 1)

			f.adapter.last().emit(embed.Ready)
			So(r.State(), ShouldEqual, Playing)
			So(r.ConsecutiveFailures(), ShouldEqual, 0)
			So(r.Player().Playing, ShouldBeTrue)
		})

		Convey("Advancing N times lands on (i+N) mod len", func() {
			for n := 1; n <= 7; n++ {
				So(r.LoadNextVideo(), ShouldBeNil)
				So(r.CurrentVideoIndex(), ShouldEqual, n%3)
			}
			So(f.adapter.peak(), ShouldEqual, 1)
		})

		Convey("Ended three times visits 0, 1, 2, 0", func() {
			for i := 0; i < 3; i++ {
				h := f.adapter.last()
				h.emit(embed.Ready)
				h.emit(embed.Ended)
			}
			So(indices(f.adapter.mounted(), pl), ShouldResemble, []int{0, 1, 2, 0})
			So(r.Stats().Ended, ShouldEqual, 3)
			So(r.ConsecutiveFailures(), ShouldEqual, 0)
			So(f.adapter.peak(), ShouldEqual, 1)
		})

		Convey("Events of a superseded session are ignored", func() {
			old := f.adapter.last()
			So(r.LoadNextVideo(), ShouldBeNil)

			old.emit(embed.Ended)
			old.fail(errors.New("late"))

			So(r.CurrentVideoIndex(), ShouldEqual, 1)
			So(r.ConsecutiveFailures(), ShouldEqual, 0)
			So(r.Stats().StaleCallbacks, ShouldEqual, 2)
		})

		Convey("CleanupPlayer is idempotent", func() {
			r.CleanupPlayer()
			r.CleanupPlayer()
			So(r.State(), ShouldEqual, Destroyed)
			So(r.Stats().Destroyed, ShouldEqual, 1)
			So(f.adapter.calls(), ShouldResemble, []string{"mount yt:A", "unmount yt:A"})

			Convey("and a new session may be created afterwards", func() {
				So(r.CreatePlayer(), ShouldBeNil)
				So(r.State(), ShouldEqual, Creating)
			})
		})

		Convey("TogglePlayPause reaches the embed", func() {
			f.adapter.last().emit(embed.Ready)
			So(r.TogglePlayPause(), ShouldBeNil)
			So(r.Player().Paused, ShouldBeTrue)

			r.CleanupPlayer()
			So(r.TogglePlayPause(), ShouldEqual, ErrNoSession)
		})

		Convey("LoadRandomVideo never picks the current video", func() {
			r2 := newFixture(t, pl, testConfig(), WithRandom(func(int) int { return 0 })).runtime
			defer r2.Close()

			So(r2.LoadRandomVideo(), ShouldBeNil)
			So(r2.CurrentVideoIndex(), ShouldEqual, 1)
			So(r2.LoadRandomVideo(), ShouldBeNil)
			So(r2.CurrentVideoIndex(), ShouldEqual, 0)
			So(r2.History().Indices(), ShouldResemble, []int{0, 1})
		})

		Convey("Closing rejects further sessions", func() {
			r.Close()
			So(r.State(), ShouldEqual, Destroyed)
			So(r.CreatePlayer(), ShouldEqual, ErrClosed)
			So(r.LoadNextVideo(), ShouldEqual, ErrClosed)
		})
	})
}

func TestHistory(t *testing.T) {
	Convey("Given a runtime with no history", t, func() {
		pl := threeVideos()
		f := newFixture(t, pl, testConfig())
		r := f.runtime
		defer r.Close()
		So(r.CreatePlayer(), ShouldBeNil)

		Convey("Going back is a no-op", func() {
			went, err := r.GoBackInHistory()
			So(err, ShouldBeNil)
			So(went, ShouldBeFalse)
			So(r.CurrentVideoIndex(), ShouldEqual, 0)
			So(len(f.adapter.mounted()), ShouldEqual, 1)
			So(r.State(), ShouldEqual, Creating)
		})

		Convey("Entries outside the playlist are dropped when going back", func() {
			r.History().Push(2)
			r.History().Push(7)
			r.History().Push(-1)

			went, err := r.GoBackInHistory()
			So(err, ShouldBeNil)
			So(went, ShouldBeTrue)
			So(r.CurrentVideoIndex(), ShouldEqual, 2)
			So(r.State(), ShouldEqual, Creating)
			So(r.History().Len(), ShouldEqual, 0)

			Convey("And a history of only bad entries keeps the current session", func() {
				r.History().Push(3)
				went, err := r.GoBackInHistory()
				So(err, ShouldBeNil)
				So(went, ShouldBeFalse)
				So(r.CurrentVideoIndex(), ShouldEqual, 2)
				So(r.State(), ShouldEqual, Creating)
			})
		})

		Convey("AddToHistory validates the index", func() {
			So(errors.Is(r.AddToHistory(3), ErrIndexOutOfRange), ShouldBeTrue)
			So(r.History().CanGoBack(), ShouldBeFalse)

			So(r.AddToHistory(1), ShouldBeNil)
			went, err := r.GoBackInHistory()
			So(err, ShouldBeNil)
			So(went, ShouldBeTrue)
			So(r.CurrentVideoIndex(), ShouldEqual, 1)
		})

		Convey("After advancing twice", func() {
			So(r.LoadNextVideo(), ShouldBeNil)
			So(r.LoadNextVideo(), ShouldBeNil)
			So(r.History().Indices(), ShouldResemble, []int{0, 1})

			r.HandleVideoError(errors.New("flaky"))
			So(r.ConsecutiveFailures(), ShouldEqual, 1)

			Convey("Going back restores the preceding index and keeps the failure counter", func() {
				went, err := r.GoBackInHistory()
				So(err, ShouldBeNil)
				So(went, ShouldBeTrue)
				So(r.CurrentVideoIndex(), ShouldEqual, 1)
				So(r.ConsecutiveFailures(), ShouldEqual, 1)

				r.GoBackInHistory()
				So(r.CurrentVideoIndex(), ShouldEqual, 0)

				went, _ = r.GoBackInHistory()
				So(went, ShouldBeFalse)
				So(r.CurrentVideoIndex(), ShouldEqual, 0)
			})
		})
	})
}

func TestFailurePolicy(t *testing.T) {
	Convey("Given a runtime with a failure ceiling of 3", t, func() {
		pl := threeVideos()
		f := newFixture(t, pl, testConfig())
		r := f.runtime
		defer r.Close()
		So(r.CreatePlayer(), ShouldBeNil)

		Convey("Two errors on index 1 retry it, the third skips to index 2", func() {
			h := f.adapter.last()
			h.emit(embed.Ready)
			h.emit(embed.Ended)
			So(r.CurrentVideoIndex(), ShouldEqual, 1)

			f.adapter.last().fail(errors.New("first"))
			So(r.CurrentVideoIndex(), ShouldEqual, 1)
			So(r.ConsecutiveFailures(), ShouldEqual, 1)

			f.adapter.last().fail(errors.New("second"))
			So(r.CurrentVideoIndex(), ShouldEqual, 1)
			So(r.ConsecutiveFailures(), ShouldEqual, 2)

			f.adapter.last().fail(errors.New("third"))
			So(r.CurrentVideoIndex(), ShouldEqual, 2)
			So(r.ConsecutiveFailures(), ShouldEqual, 0)

			So(indices(f.adapter.mounted(), pl), ShouldResemble, []int{0, 1, 1, 1, 2})

			stats := r.Stats()
			So(stats.ProviderErrors, ShouldEqual, 3)
			So(stats.Retries, ShouldEqual, 2)
			So(stats.Skips, ShouldEqual, 1)
			So(stats.ForcedRecreations, ShouldEqual, 1)
			So(f.adapter.recreated(), ShouldEqual, 1)
		})

		Convey("A skip recreates the backend between the two videos", func() {
			for i := 0; i < 3; i++ {
				r.HandleLoadTimeout()
			}
			So(f.adapter.calls(), ShouldResemble, []string{
				"mount yt:A", "unmount yt:A",
				"mount yt:A", "unmount yt:A",
				"mount yt:A", "unmount yt:A",
				"recreate",
				"mount vimeo:B",
			})
			So(r.History().Indices(), ShouldResemble, []int{0})
			So(r.VideoCount(), ShouldEqual, 0)
		})

		Convey("The counter rises with each failure without an intervening playing", func() {
			var seen []int
			r.HandleLoadTimeout()
			seen = append(seen, r.ConsecutiveFailures())
			r.HandleVideoError(errors.New("x"))
			seen = append(seen, r.ConsecutiveFailures())

			f.adapter.last().emit(embed.Ready)
			seen = append(seen, r.ConsecutiveFailures())

			So(seen, ShouldResemble, []int{1, 2, 0})
		})

		Convey("Ended does not touch the failure counter", func() {
			r.HandleVideoError(errors.New("x"))
			f.adapter.last().emit(embed.Ended)
			So(r.ConsecutiveFailures(), ShouldEqual, 1)
			So(r.CurrentVideoIndex(), ShouldEqual, 1)
		})

		Convey("A session fails only once", func() {
			h := f.adapter.last()
			h.fail(errors.New("a"))
			h.fail(errors.New("b"))
			So(r.ConsecutiveFailures(), ShouldEqual, 1)
		})
	})
}

func TestTimers(t *testing.T) {
	defer goleak.VerifyNone(t)

	Convey("Given a runtime on a fake clock", t, func() {
		pl := threeVideos()
		f := newFixture(t, pl, testConfig())
		r := f.runtime
		defer r.Close()

		So(r.CreatePlayer(), ShouldBeNil)
		So(f.waiters(2), ShouldBeNil)

		Convey("An embed that never becomes ready times out and is rebuilt", func() {
			ok := f.step(15*time.Second, func(s Stats) bool { return s.LoadTimeouts == 1 })
			So(ok, ShouldBeTrue)
			So(r.ConsecutiveFailures(), ShouldEqual, 1)
			So(indices(f.adapter.mounted(), pl), ShouldResemble, []int{0, 0})
			So(r.State(), ShouldEqual, Creating)
		})

		Convey("Ready cancels the load timeout", func() {
			f.adapter.last().emit(embed.Ready)
			r.StopWatchdog()
			f.clock.Advance(time.Minute)
			time.Sleep(20 * time.Millisecond)
			So(r.Stats().LoadTimeouts, ShouldEqual, 0)
		})

		Convey("After destroy no timer of the session acts", func() {
			r.CleanupPlayer()
			So(f.waiters(0), ShouldBeNil)

			f.clock.Advance(time.Minute)
			time.Sleep(20 * time.Millisecond)

			stats := r.Stats()
			So(stats.LoadTimeouts, ShouldEqual, 0)
			So(stats.WatchdogChecks, ShouldEqual, 0)
			So(r.State(), ShouldEqual, Destroyed)
			So(len(f.adapter.mounted()), ShouldEqual, 1)
		})

		Convey("A synchronous mount failure is handled after the retry delay", func() {
			f.adapter.mu.Lock()
			f.adapter.mountErr = func(_ playlist.Video, attempt int) error {
				if attempt == 2 {
					return errors.New("sdk unavailable")
				}
				return nil
			}
			f.adapter.mu.Unlock()

			So(r.LoadNextVideo(), ShouldBeNil)
			So(r.State(), ShouldEqual, Errored)
			So(r.Stats().MountErrors, ShouldEqual, 1)

			ok := f.step(2*time.Second, func(s Stats) bool { return s.ProviderErrors == 1 })
			So(ok, ShouldBeTrue)
			So(r.State(), ShouldEqual, Creating)
			So(r.CurrentVideoIndex(), ShouldEqual, 1)
			So(r.ConsecutiveFailures(), ShouldEqual, 1)
		})
	})
}

func TestMountPanic(t *testing.T) {
	Convey("A panicking adapter is treated as a provider error", t, func() {
		f := newFixture(t, threeVideos(), testConfig())
		r := f.runtime
		defer r.Close()

		f.adapter.panicMount = true
		So(r.CreatePlayer(), ShouldBeNil)
		So(r.State(), ShouldEqual, Errored)
		So(r.Stats().MountErrors, ShouldEqual, 1)
	})
}

func TestRecreation(t *testing.T) {
	Convey("Given a recreation ceiling of 3", t, func() {
		cfg := testConfig()
		cfg.MaxVideosBeforeRecreate = 3
		f := newFixture(t, threeVideos(), cfg)
		r := f.runtime
		defer r.Close()
		So(r.CreatePlayer(), ShouldBeNil)

		Convey("Every switch counts", func() {
			r.LoadNextVideo()
			r.LoadNextVideo()
			So(r.VideoCount(), ShouldEqual, 2)
			So(f.adapter.recreated(), ShouldEqual, 0)

			session, _ := r.Session()
			So(session.VideosPlayedSinceRecreate, ShouldEqual, 2)
		})

		Convey("The third switch recreates between the videos and resets the counter", func() {
			for i := 0; i < 3; i++ {
				So(r.LoadNextVideo(), ShouldBeNil)
			}
			So(f.adapter.recreated(), ShouldEqual, 1)
			So(r.VideoCount(), ShouldEqual, 0)
			So(r.Stats().Recreations, ShouldEqual, 1)
			So(r.Stats().ForcedRecreations, ShouldEqual, 0)

			calls := f.adapter.calls()
			i := lo.IndexOf(calls, "recreate")
			So(calls[i-1], ShouldEqual, "unmount yt:C")
			So(calls[i+1], ShouldEqual, "mount yt:A")
			So(f.adapter.violations, ShouldBeEmpty)
		})

		Convey("Going back and random also count", func() {
			r.LoadNextVideo()
			r.GoBackInHistory()
			r.LoadRandomVideo()
			So(f.adapter.recreated(), ShouldEqual, 1)
			So(r.VideoCount(), ShouldEqual, 0)
		})

		Convey("Retries do not count", func() {
			r.HandleVideoError(errors.New("x"))
			r.HandleVideoError(errors.New("y"))
			So(r.VideoCount(), ShouldEqual, 0)
			So(f.adapter.recreated(), ShouldEqual, 0)
		})
	})
}

func TestObservers(t *testing.T) {
	Convey("Observers see transitions after the lock is released", t, func() {
		var (
			mu    sync.Mutex
			kinds []EventKind
		)

		var r *Runtime
		f := newFixture(t, threeVideos(), testConfig(), WithObserver(func(n Notification) {
			_ = r.Snapshot()
			mu.Lock()
			kinds = append(kinds, n.Kind)
			mu.Unlock()
		}))
		r = f.runtime
		defer r.Close()

		So(r.CreatePlayer(), ShouldBeNil)
		f.adapter.last().emit(embed.Ready)
		f.adapter.last().emit(embed.Ended)

		mu.Lock()
		defer mu.Unlock()
		So(kinds, ShouldResemble, []EventKind{
			EventCreated, EventPlaying, EventEnded, EventDestroyed, EventCreated,
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("The snapshot exposes the wall state under stable names", t, func() {
		f := newFixture(t, threeVideos(), testConfig())
		r := f.runtime
		defer r.Close()

		So(r.CreatePlayer(), ShouldBeNil)
		f.adapter.last().emit(embed.Ready)
		f.adapter.last().setTime(4)
		r.LoadNextVideo()
		f.adapter.last().emit(embed.Ready)

		snapshot := r.Snapshot()
		So(snapshot.CurrentVideoIndex, ShouldEqual, 1)
		So(snapshot.CanGoBack, ShouldBeTrue)
		So(cmp.Diff(snapshot.Videos, []playlist.Video{videoA, videoB, videoC}), ShouldBeEmpty)

		raw, err := json.Marshal(snapshot)
		So(err, ShouldBeNil)

		var fields map[string]any
		So(json.Unmarshal(raw, &fields), ShouldBeNil)
		for _, name := range []string{"videos", "currentVideoIndex", "currentVideo", "videoCount", "consecutiveFailures", "player"} {
			So(fields, ShouldContainKey, name)
		}
		So(fields["state"], ShouldEqual, "PLAYING")
		So(fields["player"].(map[string]any)["playing"], ShouldEqual, true)
	})
}
