package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/util"
	"github.com/carekiosk/kiosk/video"
	tea "github.com/charmbracelet/bubbletea"
)

type (
	stateMsg       video.State
	elapsedMsg     struct{ position, duration time.Duration }
	captionMsg     string
	watchedMsg     struct{}
	chromeMsg      bool
	scrubCommitMsg struct{ gen int }
	stoppedMsg     struct{}
)

// offer replaces the oldest pending value when ch is full, so the surface always catches up to the latest one.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// subscribe forwards the player's callbacks into the bubble's channels.
func (b *statefulBubble) subscribe() {
	b.cancels = append(b.cancels,
		b.player.OnState(func(s video.State) { offer(b.statesChannel, s) }),
		b.player.OnElapsed(func(position, duration time.Duration) {
			offer(b.elapsedChannel, elapsedMsg{position: position, duration: duration})
		}),
		b.player.OnCaption(func(text string) { offer(b.captionChannel, text) }),
		b.player.OnWatched(func() { offer(b.watchedChannel, struct{}{}) }),
	)
	if b.chrome != nil {
		b.chrome.OnChange(func(hidden bool) { offer(b.chromeChannel, hidden) })
	}
}

func (b *statefulBubble) unsubscribe() {
	if b.stopped {
		return
	}
	b.stopped = true
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
	close(b.done)
}

// waitForEvents blocks until the player reports something the view shows.
func (b *statefulBubble) waitForEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.statesChannel:
			return stateMsg(s)
		case e := <-b.elapsedChannel:
			return e
		case text := <-b.captionChannel:
			return captionMsg(text)
		case <-b.watchedChannel:
			return watchedMsg{}
		case hidden := <-b.chromeChannel:
			return chromeMsg(hidden)
		case <-b.done:
			return stoppedMsg{}
		}
	}
}

func (b *statefulBubble) mount() tea.Cmd {
	return func() tea.Msg {
		if err := b.player.Mount(b.ctx); err != nil {
			desc := b.player.Descriptor()
			log.Errorf("mount %s: %v", desc.String(), err)
			return fmt.Sprintf("%s could not start the video", icon.Get(icon.Fail))
		}
		return nil
	}
}

// run performs a blocking player action off the update loop. Failures surface as a notification.
func (b *statefulBubble) run(name string, action func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := action(b.ctx); err != nil {
			log.Warnf("%s: %v", name, err)
			return fmt.Sprintf("%s %s failed", icon.Get(icon.Fail), name)
		}
		return nil
	}
}

func (b *statefulBubble) rotate(o video.Orientation) tea.Cmd {
	return b.run("rotate", func(context.Context) error { return b.player.Rotate(o) })
}

// scrub moves the preview by delta and schedules the commit for when the viewer stops pressing.
func (b *statefulBubble) scrub(delta time.Duration) tea.Cmd {
	if !b.scrubbing {
		b.scrubbing = true
		b.scrubTo = b.position
	}
	b.scrubTo = util.Clamp(b.scrubTo+delta, 0, b.duration)
	b.scrubGen++
	b.player.SeekPreview(b.scrubTo)

	gen := b.scrubGen
	return tea.Tick(scrubCommitDelay, func(time.Time) tea.Msg {
		return scrubCommitMsg{gen: gen}
	})
}

func (b *statefulBubble) commitScrub() tea.Cmd {
	if !b.scrubbing {
		return nil
	}
	b.scrubbing = false
	to := b.scrubTo
	return b.run("seek", func(ctx context.Context) error { return b.player.SeekCommit(ctx, to) })
}
