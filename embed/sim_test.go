package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/videowall/videowall/playlist"
	"go.uber.org/goleak"

	. "github.com/smartystreets/goconvey/convey"
)

func blockUntil(clock clockwork.FakeClock, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return clock.BlockUntilContext(ctx, n)
}

func TestSim(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := playlist.Video{Provider: playlist.YouTube, ID: "A"}
	b := playlist.Video{Provider: playlist.Vimeo, ID: "B"}

	Convey("Given a simulated adapter", t, func() {
		clock := clockwork.NewFakeClock()
		faults := map[string][]Fault{}
		sim := NewSim(SimOptions{
			Clock:     clock,
			LoadDelay: time.Second,
			Duration:  20 * time.Second,
			StallAt:   2 * time.Second,
			Script: func(video playlist.Video, mount int) Fault {
				if script := faults[video.String()]; mount <= len(script) {
					return script[mount-1]
				}
				return FaultNone
			},
		})
		defer sim.Close()

		rec := newRecorder()

		Convey("A healthy video becomes ready after the load delay and then ends", func() {
			h, err := sim.Mount(a, rec.listen)
			So(err, ShouldBeNil)
			So(h.Status().Ready, ShouldBeFalse)

			So(blockUntil(clock, 1), ShouldBeNil)
			clock.Advance(time.Second)

			e, _ := rec.next()
			So(e.Kind, ShouldEqual, Ready)
			So(h.Status().Playing, ShouldBeTrue)

			So(blockUntil(clock, 1), ShouldBeNil)
			clock.Advance(5 * time.Second)
			So(h.Status().CurrentTime, ShouldEqual, 5.0)

			clock.Advance(15 * time.Second)
			e, _ = rec.next()
			So(e.Kind, ShouldEqual, Ended)
			So(h.Status().Playing, ShouldBeFalse)
			So(h.Status().CurrentTime, ShouldEqual, 20.0)
		})

		Convey("Pausing freezes the position", func() {
			h, _ := sim.Mount(a, rec.listen)
			So(blockUntil(clock, 1), ShouldBeNil)
			clock.Advance(time.Second)
			rec.next()

			clock.Advance(3 * time.Second)
			So(h.TogglePause(), ShouldBeNil)
			clock.Advance(10 * time.Second)

			status := h.Status()
			So(status.Paused, ShouldBeTrue)
			So(status.Playing, ShouldBeFalse)
			So(status.CurrentTime, ShouldEqual, 3.0)

			So(h.TogglePause(), ShouldBeNil)
			clock.Advance(2 * time.Second)
			So(h.Status().CurrentTime, ShouldEqual, 5.0)
		})

		Convey("Injected faults", func() {
			Convey("An error replaces readiness", func() {
				faults[a.String()] = []Fault{FaultError}
				sim.Mount(a, rec.listen)
				So(blockUntil(clock, 1), ShouldBeNil)
				clock.Advance(time.Second)

				e, _ := rec.next()
				So(e.Kind, ShouldEqual, Error)
				So(errors.Is(e.Err, ErrSimulated), ShouldBeTrue)
			})

			Convey("A stalled video freezes at StallAt", func() {
				faults[a.String()] = []Fault{FaultStall}
				h, _ := sim.Mount(a, rec.listen)
				So(blockUntil(clock, 1), ShouldBeNil)
				clock.Advance(time.Second)
				rec.next()

				clock.Advance(time.Minute)
				So(h.Status().CurrentTime, ShouldEqual, 2.0)
				So(h.Status().Playing, ShouldBeTrue)
				So(rec.none(), ShouldBeTrue)
			})

			Convey("A video that never loads stays silent", func() {
				faults[a.String()] = []Fault{FaultNeverReady}
				h, _ := sim.Mount(a, rec.listen)
				So(blockUntil(clock, 1), ShouldBeNil)
				clock.Advance(time.Minute)
				So(rec.none(), ShouldBeTrue)
				So(h.Status().Ready, ShouldBeFalse)
			})

			Convey("A mount error is returned synchronously and only once", func() {
				faults[b.String()] = []Fault{FaultMountError}
				_, err := sim.Mount(b, rec.listen)
				So(errors.Is(err, ErrSimulated), ShouldBeTrue)
				So(sim.Mounted(), ShouldBeFalse)

				_, err = sim.Mount(b, rec.listen)
				So(err, ShouldBeNil)
				So(sim.Mounts(b), ShouldEqual, 2)
			})
		})

		Convey("Unmount silences the handle and is idempotent", func() {
			h, _ := sim.Mount(a, rec.listen)
			So(sim.Unmount(h), ShouldBeNil)
			So(sim.Unmount(h), ShouldBeNil)
			So(sim.Mounted(), ShouldBeFalse)

			clock.Advance(time.Minute)
			So(rec.none(), ShouldBeTrue)
			So(h.TogglePause(), ShouldEqual, ErrClosed)
		})

		Convey("Recreate counts and refuses while mounted", func() {
			h, _ := sim.Mount(a, rec.listen)
			So(sim.Recreate(), ShouldEqual, ErrHandleMounted)

			sim.Unmount(h)
			So(sim.Recreate(), ShouldBeNil)
			So(sim.Recreations(), ShouldEqual, 1)
		})

		Convey("Close rejects further mounts", func() {
			sim.Mount(a, rec.listen)
			So(sim.Close(), ShouldBeNil)

			_, err := sim.Mount(a, rec.listen)
			So(err, ShouldEqual, ErrClosed)
		})
	})
}
