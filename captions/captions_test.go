package captions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carekiosk/kiosk/filesystem"
	"github.com/carekiosk/kiosk/video"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const track = "\ufeffWEBVTT - hygiene\n" +
	"\n" +
	"NOTE reviewed by the education team\n" +
	"\n" +
	"STYLE\n" +
	"::cue { color: yellow }\n" +
	"\n" +
	"intro\n" +
	"00:00.000 --> 00:01.000 align:start position:10%\n" +
	"<v Nurse>Wash your hands</v>\n" +
	"\n" +
	"00:00:01.000 --> 00:00:02.000\r\n" +
	"for twenty seconds\r\n" +
	"with soap &amp; water\r\n" +
	"\n" +
	"00:00:01.500 --> 00:00:03.000\n" +
	"overlapping\n"

func TestURLFor(t *testing.T) {
	Convey("URLFor", t, func() {
		Convey("Should replace the manifest with the caption file of the asset folder", func() {
			got, err := URLFor("https://cdn.example.com/videos/hygiene/master.m3u8?token=abc#t=3")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "https://cdn.example.com/videos/hygiene/kiosk_hygiene_fpm4_en.vtt")
		})

		Convey("Should work for progressive files too", func() {
			got, err := URLFor("https://cdn.example.com/inhaler/inhaler_720.mp4")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "https://cdn.example.com/inhaler/kiosk_inhaler_fpm4_en.vtt")
		})

		Convey("Should reject urls without an asset folder", func() {
			_, err := URLFor("https://cdn.example.com/master.m3u8")
			So(err, ShouldNotBeNil)
			_, err = URLFor("not a url")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given a WebVTT track", t, func() {
		cues, err := Parse(strings.NewReader(track))
		So(err, ShouldBeNil)

		Convey("Comment and style blocks should be skipped", func() {
			So(cues, ShouldHaveLength, 3)
		})

		Convey("Identifiers, settings and markup should not leak into cues", func() {
			So(cues[0], ShouldResemble, Cue{Start: 0, End: time.Second, Text: "Wash your hands"})
		})

		Convey("Multi-line text should be joined and entities decoded", func() {
			So(cues[1].Start, ShouldEqual, time.Second)
			So(cues[1].End, ShouldEqual, 2*time.Second)
			So(cues[1].Text, ShouldEqual, "for twenty seconds\nwith soap & water")
		})
	})

	Convey("Parse should reject", t, func() {
		Convey("A track without header", func() {
			_, err := Parse(strings.NewReader("00:00.000 --> 00:01.000\nhi\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("A malformed timestamp", func() {
			_, err := Parse(strings.NewReader("WEBVTT\n\n00:00 --> 00:01.000\nhi\n"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given cues a and b", t, func() {
		cues := []Cue{
			{Start: 0, End: time.Second, Text: "a"},
			{Start: time.Second, End: 2 * time.Second, Text: "b"},
		}

		So(resolve(cues, 999*time.Millisecond).MustGet(), ShouldEqual, "a")
		So(resolve(cues, time.Second).MustGet(), ShouldEqual, "b")
		So(resolve(cues, 2500*time.Millisecond).IsAbsent(), ShouldBeTrue)
	})

	Convey("Overlapping cues should resolve in source order", t, func() {
		cues, _ := Parse(strings.NewReader(track))
		So(resolve(cues, 1600*time.Millisecond).MustGet(), ShouldStartWith, "for twenty seconds")
		So(resolve(cues, 2500*time.Millisecond).MustGet(), ShouldEqual, "overlapping")
	})
}

func TestSynchronizer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a caption server", t, func() {
		var hits atomic.Int32
		var gotPath, gotAuth atomic.Value
		var status atomic.Int32
		status.Store(http.StatusOK)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			gotPath.Store(r.URL.Path)
			gotAuth.Store(r.Header.Get("Authorization"))
			if code := int(status.Load()); code != http.StatusOK {
				w.WriteHeader(code)
				return
			}
			_, _ = w.Write([]byte(track))
		}))
		defer srv.Close()

		desc := video.Descriptor{ID: 7, Name: "Hand hygiene", AdaptiveStreamURL: srv.URL + "/videos/hygiene/master.m3u8?sig=1"}
		syn := NewSynchronizerWith(srv.Client(), false)

		Convey("Load should fetch the derived track once, without credentials", func() {
			So(syn.Load(ctx, desc), ShouldBeNil)
			So(syn.Load(ctx, desc), ShouldBeNil)

			So(hits.Load(), ShouldEqual, 1)
			So(gotPath.Load(), ShouldEqual, "/videos/hygiene/kiosk_hygiene_fpm4_en.vtt")
			So(gotAuth.Load(), ShouldEqual, "")
			So(syn.HasCaptions(), ShouldBeTrue)
			So(syn.ResolveAt(2500*time.Millisecond).MustGet(), ShouldEqual, "overlapping")
		})

		Convey("A missing track should leave the session without captions", func() {
			status.Store(http.StatusNotFound)
			err := syn.Load(ctx, desc)
			So(errors.Is(err, ErrNoCaptions), ShouldBeTrue)
			So(syn.HasCaptions(), ShouldBeFalse)

			status.Store(http.StatusOK)
			So(syn.Load(ctx, desc), ShouldBeNil)
			So(syn.HasCaptions(), ShouldBeFalse)
		})

		Convey("OnTick should push text only when it changes", func() {
			So(syn.Load(ctx, desc), ShouldBeNil)

			var pushed []string
			syn.OnCaption(func(text string) { pushed = append(pushed, text) })

			for _, ms := range []int{100, 200, 999, 1000, 1200, 2500, 3100, 3200} {
				syn.OnTick(time.Duration(ms) * time.Millisecond)
			}
			So(pushed, ShouldResemble, []string{
				"Wash your hands",
				"for twenty seconds\nwith soap & water",
				"overlapping",
				"",
			})
			So(syn.Current(), ShouldEqual, "")
		})

		Convey("Close should drop the track and silence ticks", func() {
			So(syn.Load(ctx, desc), ShouldBeNil)
			pushed := 0
			syn.OnCaption(func(string) { pushed++ })

			syn.Close()
			syn.OnTick(100 * time.Millisecond)
			So(pushed, ShouldEqual, 0)
			So(syn.HasCaptions(), ShouldBeFalse)
		})

		Convey("A load finishing after Close should be discarded", func() {
			syn.Close()
			So(syn.Load(ctx, desc), ShouldBeNil)
			So(syn.HasCaptions(), ShouldBeFalse)
		})

		Convey("With the disk cache, a second session should not refetch", func() {
			first := NewSynchronizerWith(srv.Client(), true)
			So(first.Load(ctx, desc), ShouldBeNil)
			before := hits.Load()

			status.Store(http.StatusInternalServerError)
			second := NewSynchronizerWith(srv.Client(), true)
			So(second.Load(ctx, desc), ShouldBeNil)
			So(second.HasCaptions(), ShouldBeTrue)
			So(hits.Load(), ShouldEqual, before)
		})
	})
}
