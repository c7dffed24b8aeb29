package analytics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/video"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

type emitted struct {
	event   Event
	payload Payload
}

type captureEmitter struct {
	got []emitted
}

func (c *captureEmitter) Emit(_ context.Context, event Event, p Payload) {
	c.got = append(c.got, emitted{event, p})
}

func TestAdapter(t *testing.T) {
	Convey("Given an adapter for one session", t, func() {
		capture := &captureEmitter{}
		adapter := NewAdapter(capture, 7, "mpv")

		status := video.Status{Position: 1500 * time.Millisecond, Duration: time.Minute, Volume: 0.8, IsPlaying: true}

		Convey("Every transition should map to its named event", func() {
			for _, tr := range []player.Transition{
				player.BufferStarted, player.BufferCompleted, player.PlaybackStarted,
				player.PlaybackPaused, player.PlaybackCompleted,
			} {
				adapter.Handle(player.TransitionEvent{Kind: tr, Status: status})
			}

			So(capture.got, ShouldHaveLength, 5)
			events := []Event{}
			for _, e := range capture.got {
				events = append(events, e.event)
			}
			So(events, ShouldResemble, []Event{BufferStarted, BufferCompleted, PlaybackStarted, PlaybackPaused, PlaybackCompleted})
		})

		Convey("The payload should carry the session and the snapshot", func() {
			adapter.Handle(player.TransitionEvent{Kind: player.PlaybackStarted, Status: status})

			p := capture.got[0].payload
			So(p, ShouldResemble, Payload{
				AssetID:       7,
				SessionID:     adapter.SessionID(),
				Platform:      "mpv",
				PositionMs:    1500,
				DurationMs:    60000,
				VolumePercent: 80,
			})
			_, err := uuid.Parse(p.SessionID)
			So(err, ShouldBeNil)
		})

		Convey("Sessions should have distinct ids", func() {
			So(NewAdapter(capture, 7, "mpv").SessionID(), ShouldNotEqual, adapter.SessionID())
		})

		Convey("Watched should emit its own event", func() {
			adapter.Watched(status)
			So(capture.got[0].event, ShouldEqual, VideoWatched)
		})
	})
}

func TestEmitters(t *testing.T) {
	Convey("Given the log and metrics emitters", t, func() {
		capture := &captureEmitter{}
		emitters := Emitters{LogEmitter{}, MetricsEmitter{}, capture}
		payload := Payload{AssetID: 1, Platform: "browser", PositionMs: 30000}

		before := testutil.ToFloat64(PlaybackEventsTotal.WithLabelValues(string(PlaybackPaused), "browser"))
		positions := testutil.ToFloat64(PositionSecondsTotal.WithLabelValues("browser"))

		emitters.Emit(context.Background(), PlaybackPaused, payload)

		Convey("The counters should move", func() {
			So(testutil.ToFloat64(PlaybackEventsTotal.WithLabelValues(string(PlaybackPaused), "browser")), ShouldEqual, before+1)
			So(testutil.ToFloat64(PositionSecondsTotal.WithLabelValues("browser")), ShouldEqual, positions+30)
		})

		Convey("Every emitter should receive the event", func() {
			So(capture.got, ShouldHaveLength, 1)
		})

		Convey("The registry should be scrapeable", func() {
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			So(rec.Body.String(), ShouldContainSubstring, "kiosk_playback_events_total")
		})
	})
}
