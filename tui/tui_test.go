package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carekiosk/kiosk/controls"
	"github.com/carekiosk/kiosk/filesystem"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/orientation"
	"github.com/carekiosk/kiosk/player/playertest"
	"github.com/carekiosk/kiosk/progress"
	"github.com/carekiosk/kiosk/video"
	"github.com/carekiosk/kiosk/watch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

// manualClock collects timer callbacks and fires them on demand.
type manualClock struct {
	mu      sync.Mutex
	pending []func()
}

func (c *manualClock) AfterFunc(_ time.Duration, fn func()) controls.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, fn)
	return manualTimer{}
}

func (c *manualClock) fire() {
	c.mu.Lock()
	fns := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

var errDecode = errors.New("decoder error")

var desc = video.Descriptor{
	ID:                5,
	Name:              "Inhaler technique",
	PosterURL:         mo.Some("https://cdn.example.com/posters/inhaler.jpg"),
	AdaptiveStreamURL: "https://cdn.example.com/videos/inhaler/master.m3u8",
}

// pump feeds every pending player event into the bubble.
func pump(b *statefulBubble) {
	for len(b.statesChannel)+len(b.elapsedChannel)+len(b.captionChannel)+len(b.watchedChannel)+len(b.chromeChannel) > 0 {
		b.Update(b.waitForEvents()())
	}
}

// run executes cmd the way the program would, descending into batches.
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(c)
		}
		return nil
	}
	return msg
}

func press(keys string) tea.KeyMsg {
	switch keys {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
}

func TestOrientationOf(t *testing.T) {
	Convey("A terminal twice as wide as tall is landscape", t, func() {
		So(orientationOf(80, 24), ShouldEqual, video.Landscape)
		So(orientationOf(48, 24), ShouldEqual, video.Landscape)
		So(orientationOf(40, 40), ShouldEqual, video.Portrait)
		So(orientationOf(30, 60), ShouldEqual, video.Portrait)
	})
}

func TestStateOf(t *testing.T) {
	Convey("The surface state follows the video state", t, func() {
		So(stateOf(video.Initial(), false), ShouldEqual, loadingState)
		So(stateOf(video.State{Loaded: true}, false), ShouldEqual, playbackState)
		So(stateOf(video.State{Loaded: true}, true), ShouldEqual, finishedState)
		So(stateOf(video.State{Loaded: true, Failed: true}, true), ShouldEqual, errorState)
	})
}

func TestKeymap(t *testing.T) {
	Convey("Help should follow the surface state", t, func() {
		k := newStatefulKeymap()

		k.setState(playbackState)
		So(k.ShortHelp()[0].Help().Desc, ShouldContainSubstring, "play/pause")

		k.setState(errorState)
		So(k.ShortHelp()[0].Help().Desc, ShouldEqual, "try again")

		k.setState(finishedState)
		So(k.FullHelp()[0][0].Help().Desc, ShouldEqual, "replay")
	})
}

func TestBubble(t *testing.T) {
	ctx := context.Background()
	minute := 60 * time.Second
	viper.Set(key.IconsVariant, "plain")

	Convey("Given a surface bound to a mounted player", t, func() {
		fake := playertest.New()
		chrome := orientation.NewChrome(nil)
		clock := &manualClock{}
		p, err := watch.New(desc, watch.Deps{
			Backend:         fake,
			Presenter:       chrome,
			Clock:           clock,
			Durations:       controls.Durations{Idle: time.Second, Hide: time.Second, Show: time.Second},
			Tracker:         progress.NewTrackerWithThreshold(progress.DefaultThreshold),
			Platform:        "test",
			DisableCaptions: true,
		})
		So(err, ShouldBeNil)

		b := newBubble(ctx, &Options{Player: p, Chrome: chrome})
		b.resize(60, 40)
		defer b.unsubscribe()

		So(p.Mount(ctx), ShouldBeNil)
		defer p.Unmount()
		pump(b)
		So(b.state, ShouldEqual, loadingState)
		So(b.View(), ShouldContainSubstring, "Loading video")

		fake.Emit(playertest.Paused(0, minute))
		pump(b)
		So(b.state, ShouldEqual, playbackState)

		Convey("It should show the title, poster and clock", func() {
			view := b.View()
			So(view, ShouldContainSubstring, desc.Name)
			So(view, ShouldContainSubstring, "inhaler.jpg")
			So(view, ShouldContainSubstring, "0:00 / 1:00")
		})

		Convey("Space should start playback", func() {
			run(b.updateKey(press(" ")))
			So(fake.Calls(), ShouldContain, "play")

			fake.Emit(playertest.Playing(30*time.Second, minute))
			pump(b)
			So(b.video.Play, ShouldBeTrue)
			So(b.View(), ShouldContainSubstring, "0:30 / 1:00")
			So(b.View(), ShouldNotContainSubstring, "inhaler.jpg")

			Convey("Scrubbing should preview, then commit on enter", func() {
				So(b.updateKey(press("right")), ShouldNotBeNil)
				So(b.updateKey(press("right")), ShouldNotBeNil)
				So(b.scrubTo, ShouldEqual, 50*time.Second)
				So(b.View(), ShouldContainSubstring, "0:50 / 1:00")
				So(fake.Calls(), ShouldNotContain, "seek 50s resume")

				run(b.updateKey(press("enter")))
				So(fake.Calls(), ShouldContain, "seek 50s resume")
				So(b.scrubbing, ShouldBeFalse)
			})

			Convey("A stale scrub commit should be ignored", func() {
				b.updateKey(press("left"))
				b.updateKey(press("left"))
				_, cmd := b.Update(scrubCommitMsg{gen: b.scrubGen - 1})
				So(run(cmd), ShouldBeNil)
				So(b.scrubbing, ShouldBeTrue)

				_, cmd = b.Update(scrubCommitMsg{gen: b.scrubGen})
				run(cmd)
				So(fake.Calls(), ShouldContain, "seek 10s resume")
			})

			Convey("Reaching the end should offer a replay", func() {
				fake.Emit(playertest.Finished(minute))
				pump(b)
				So(b.state, ShouldEqual, finishedState)
				So(b.watched, ShouldBeTrue)
				So(b.View(), ShouldContainSubstring, "Finished")

				run(b.updateKey(press("r")))
				calls := fake.Calls()
				So(calls[len(calls)-2:], ShouldResemble, []string{"seek 0s", "play"})
			})
		})

		Convey("A press on hidden controls should only reveal them", func() {
			clock.fire()
			clock.fire()
			pump(b)
			So(b.video.Controls, ShouldEqual, video.Hidden)
			So(b.View(), ShouldNotContainSubstring, "play/pause")

			So(b.updateKey(press(" ")), ShouldBeNil)
			So(fake.Calls(), ShouldNotContain, "play")
			pump(b)
			So(b.video.Controls, ShouldEqual, video.Showing)
		})

		Convey("Fullscreen should strip the header", func() {
			run(b.updateKey(press("f")))
			pump(b)
			So(chrome.Hidden(), ShouldBeTrue)
			So(b.chromeHidden, ShouldBeTrue)
			So(b.View(), ShouldNotContainSubstring, desc.Name)
		})

		Convey("A wide terminal should rotate to landscape while playing", func() {
			run(b.updateKey(press(" ")))
			fake.Emit(playertest.Playing(time.Second, minute))
			pump(b)

			_, cmd := b.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
			run(cmd)
			pump(b)
			So(b.orientation, ShouldEqual, video.Landscape)
			So(chrome.Hidden(), ShouldBeTrue)
		})

		Convey("A playback failure should offer a retry", func() {
			fake.Fail(errDecode)
			pump(b)
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "Playback failed")

			run(b.updateKey(press("enter")))
			calls := fake.Calls()
			So(calls, ShouldHaveLength, 2)
			So(calls[1], ShouldEqual, "load "+desc.AdaptiveStreamURL)
			pump(b)
			So(b.state, ShouldEqual, loadingState)
		})

		Convey("Quit should stop listening", func() {
			So(b.updateKey(press("q")), ShouldNotBeNil)
			So(b.waitForEvents()(), ShouldHaveSameTypeAs, stoppedMsg{})
		})
	})
}
