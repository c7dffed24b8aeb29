package player_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/player/playertest"
	"github.com/carekiosk/kiosk/video"
	. "github.com/smartystreets/goconvey/convey"
)

var clip = video.Descriptor{
	ID:                7,
	Name:              "Hand hygiene",
	AdaptiveStreamURL: "https://cdn.example.com/videos/hygiene/master.m3u8",
}

type recorder struct {
	mu          sync.Mutex
	ticks       []player.Tick
	transitions []player.Transition
	finished    int
	errs        []error
}

func record(e *player.Engine) *recorder {
	r := &recorder{}
	e.Subscribe(func(t player.Tick) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ticks = append(r.ticks, t)
	})
	e.OnTransition(func(ev player.TransitionEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.transitions = append(r.transitions, ev.Kind)
	})
	e.OnFinished(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.finished++
	})
	e.OnError(func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
	})
	return r
}

func (r *recorder) lastTick() player.Tick {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks[len(r.ticks)-1]
}

func TestEngine(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine on a started backend", t, func() {
		fake := playertest.New()
		engine := player.NewEngine(fake)
		rec := record(engine)

		So(engine.Start(ctx, clip), ShouldBeNil)
		So(fake.Calls(), ShouldResemble, []string{"load " + clip.AdaptiveStreamURL})

		Convey("The first loaded snapshot should capture the duration", func() {
			fake.Emit(playertest.Paused(0, 10*time.Second))

			snap := engine.Snapshot()
			So(snap.Loaded, ShouldBeTrue)
			So(snap.Duration, ShouldEqual, 10*time.Second)
			So(rec.ticks, ShouldBeEmpty)
		})

		Convey("Playing snapshots should produce ceiling percentages", func() {
			fake.Emit(playertest.Playing(2500*time.Millisecond, 10*time.Second))
			So(rec.lastTick().Percent, ShouldEqual, 25)

			fake.Emit(playertest.Playing(2510*time.Millisecond, 10*time.Second))
			So(rec.lastTick().Percent, ShouldEqual, 26)
			So(engine.Snapshot().CurrentTime, ShouldEqual, 2510*time.Millisecond)
		})

		Convey("Paused snapshots should not tick", func() {
			fake.Emit(playertest.Paused(3*time.Second, 10*time.Second))
			So(rec.ticks, ShouldBeEmpty)
		})

		Convey("Play and pause should forward to the backend and flip play", func() {
			So(engine.Play(ctx), ShouldBeNil)
			So(engine.Snapshot().Play, ShouldBeTrue)

			So(engine.Pause(ctx), ShouldBeNil)
			So(engine.Snapshot().Play, ShouldBeFalse)
			So(fake.Calls()[1:], ShouldResemble, []string{"play", "pause"})
		})

		Convey("A scrub should preview without touching the backend", func() {
			fake.Emit(playertest.Playing(2*time.Second, 10*time.Second))

			engine.Seek(5 * time.Second)
			snap := engine.Snapshot()
			So(snap.Seek, ShouldEqual, video.Seeking)
			So(snap.CurrentTime, ShouldEqual, 5*time.Second)
			So(fake.Calls(), ShouldHaveLength, 1)

			Convey("Ticks should keep the committed position while scrubbing", func() {
				fake.Emit(playertest.Playing(3*time.Second, 10*time.Second))
				So(rec.lastTick().Position, ShouldEqual, 2*time.Second)
				So(rec.lastTick().Percent, ShouldEqual, 20)
				So(engine.Snapshot().CurrentTime, ShouldEqual, 5*time.Second)
			})

			Convey("Committing should seek with resume and end the scrub playing", func() {
				So(engine.SeekEnd(ctx, 5*time.Second), ShouldBeNil)

				snap := engine.Snapshot()
				So(snap.Seek, ShouldEqual, video.NotSeeking)
				So(snap.Play, ShouldBeTrue)
				So(snap.CurrentTime, ShouldEqual, 5*time.Second)
				So(fake.Calls(), ShouldContain, "seek 5s resume")

				fake.Emit(playertest.Playing(5100*time.Millisecond, 10*time.Second))
				So(rec.lastTick().Position, ShouldEqual, 5100*time.Millisecond)
			})

			Convey("A failed commit should fall back to the committed position", func() {
				fake.SeekErr = errors.New("seek refused")
				So(engine.SeekEnd(ctx, 5*time.Second), ShouldNotBeNil)

				snap := engine.Snapshot()
				So(snap.Seek, ShouldEqual, video.NotSeeking)
				So(snap.CurrentTime, ShouldEqual, 2*time.Second)
			})
		})

		Convey("Scrub targets should be clamped to the duration", func() {
			fake.Emit(playertest.Paused(0, 10*time.Second))
			engine.Seek(30 * time.Second)
			So(engine.Snapshot().CurrentTime, ShouldEqual, 10*time.Second)
			engine.Seek(-time.Second)
			So(engine.Snapshot().CurrentTime, ShouldEqual, time.Duration(0))
		})

		Convey("Finishing should stop play and report a full tick once", func() {
			So(engine.Play(ctx), ShouldBeNil)
			fake.Emit(playertest.Playing(9*time.Second, 10*time.Second))
			fake.Emit(playertest.Finished(10 * time.Second))

			snap := engine.Snapshot()
			So(snap.Play, ShouldBeFalse)
			So(snap.Finished, ShouldBeTrue)

			tick := rec.lastTick()
			So(tick.Finished, ShouldBeTrue)
			So(tick.Percent, ShouldEqual, 100)
			So(rec.finished, ShouldEqual, 1)

			Convey("Replay should rewind and play", func() {
				So(engine.Replay(ctx), ShouldBeNil)
				So(fake.Calls(), ShouldContain, "seek 0s")
				So(fake.Calls()[len(fake.Calls())-1], ShouldEqual, "play")

				snap := engine.Snapshot()
				So(snap.Play, ShouldBeTrue)
				So(snap.Finished, ShouldBeFalse)
				So(snap.CurrentTime, ShouldEqual, time.Duration(0))
			})
		})

		Convey("Transitions should be reported on edges only", func() {
			fake.Emit(playertest.Paused(0, 10*time.Second))
			fake.Emit(playertest.Playing(time.Second, 10*time.Second))
			fake.Emit(playertest.Playing(2*time.Second, 10*time.Second))

			buffering := playertest.Paused(2*time.Second, 10*time.Second)
			buffering.IsBuffering = true
			fake.Emit(buffering)
			fake.Emit(buffering)

			fake.Emit(playertest.Playing(3*time.Second, 10*time.Second))
			fake.Emit(playertest.Paused(3*time.Second, 10*time.Second))
			fake.Emit(playertest.Finished(10 * time.Second))

			So(rec.transitions, ShouldResemble, []player.Transition{
				player.PlaybackStarted,
				player.BufferStarted,
				player.BufferCompleted,
				player.PlaybackPaused,
				player.PlaybackCompleted,
			})
		})

		Convey("A pause from outside should clear play", func() {
			So(engine.Play(ctx), ShouldBeNil)
			fake.Emit(playertest.Playing(time.Second, 10*time.Second))
			fake.Emit(playertest.Paused(time.Second, 10*time.Second))
			So(engine.Snapshot().Play, ShouldBeFalse)
		})

		Convey("A hard error should mark the engine failed", func() {
			fake.Emit(playertest.Playing(4*time.Second, 10*time.Second))
			fake.Fail(errors.New("decoder exploded"))

			snap := engine.Snapshot()
			So(snap.Failed, ShouldBeTrue)
			So(snap.Play, ShouldBeFalse)
			So(rec.errs, ShouldHaveLength, 1)

			Convey("Retry should reload and return to the committed position", func() {
				So(engine.Retry(ctx), ShouldBeNil)
				calls := fake.Calls()
				So(calls[len(calls)-2:], ShouldResemble, []string{"load " + clip.AdaptiveStreamURL, "seek 4s"})
				So(engine.Snapshot().Failed, ShouldBeFalse)
			})
		})

		Convey("After Close every operation should be a silent no-op", func() {
			So(engine.Close(), ShouldBeNil)
			So(fake.Closed(), ShouldBeTrue)
			before := len(fake.Calls())

			So(engine.Play(ctx), ShouldBeNil)
			So(engine.Pause(ctx), ShouldBeNil)
			So(engine.SeekEnd(ctx, time.Second), ShouldBeNil)
			So(engine.Replay(ctx), ShouldBeNil)
			engine.Seek(time.Second)
			fake.Emit(playertest.Playing(time.Second, 10*time.Second))

			So(fake.Calls(), ShouldHaveLength, before)
			So(rec.ticks, ShouldBeEmpty)
			So(engine.Close(), ShouldBeNil)
		})

		Convey("An acknowledgement arriving after Close should be dropped", func() {
			fake.Emit(playertest.Paused(time.Second, 10*time.Second))
			fake.SeekGate = make(chan struct{})

			done := make(chan error, 1)
			go func() { done <- engine.SeekEnd(ctx, 6*time.Second) }()

			// wait until the seek reached the backend
			for len(fake.Calls()) < 2 {
				time.Sleep(time.Millisecond)
			}
			So(engine.Close(), ShouldBeNil)
			close(fake.SeekGate)

			So(<-done, ShouldBeNil)
			So(engine.Snapshot().Play, ShouldBeFalse)
		})
	})
}

func TestTransitionString(t *testing.T) {
	Convey("Transitions should have readable names", t, func() {
		So(player.BufferStarted.String(), ShouldEqual, "buffer-started")
		So(player.PlaybackCompleted.String(), ShouldEqual, "playback-completed")
		So(player.Transition(42).String(), ShouldEqual, "unknown")
	})
}
