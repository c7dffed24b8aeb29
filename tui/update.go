package tui

import (
	"context"
	"fmt"

	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/video"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.waitForEvents(), b.mount())
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// strings and clear messages belong to the notifier
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, tea.Batch(cmd, b.updateOrientation(msg.Width, msg.Height))
	case stateMsg:
		b.video = video.State(msg)
		b.finished = b.player.Finished()
		b.setState(stateOf(b.video, b.finished))
		if b.chrome == nil {
			b.chromeHidden = b.video.Fullscreen
		}
		return b, tea.Batch(cmd, b.waitForEvents())
	case elapsedMsg:
		b.position, b.duration = msg.position, msg.duration
		return b, tea.Batch(cmd, b.waitForEvents())
	case captionMsg:
		b.caption = string(msg)
		return b, tea.Batch(cmd, b.waitForEvents())
	case watchedMsg:
		b.watched = true
		return b, tea.Batch(cmd, b.waitForEvents(), notify(fmt.Sprintf("%s marked as watched", icon.Get(icon.Watched))))
	case chromeMsg:
		b.chromeHidden = bool(msg)
		return b, tea.Batch(cmd, b.waitForEvents())
	case stoppedMsg:
		return b, cmd
	case scrubCommitMsg:
		if msg.gen != b.scrubGen {
			return b, cmd
		}
		return b, tea.Batch(cmd, b.commitScrub())
	case spinner.TickMsg:
		var spinCmd tea.Cmd
		b.spinnerC, spinCmd = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, spinCmd)
	case tea.KeyMsg:
		return b, tea.Batch(cmd, b.updateKey(msg))
	}

	return b, cmd
}

func (b *statefulBubble) updateKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.forceQuit), key.Matches(msg, b.keymap.quit):
		return b.quit()
	}

	// Every press counts as a tap. While playing, a press on hidden or fading controls only reveals them.
	interactive := b.player.Interactive()
	b.player.Tap()
	if b.state == playbackState && !interactive {
		return nil
	}

	switch b.state {
	case errorState:
		if key.Matches(msg, b.keymap.retry) {
			return b.run("retry", b.player.Retry)
		}
	case finishedState:
		switch {
		case key.Matches(msg, b.keymap.replay), key.Matches(msg, b.keymap.playPause):
			return b.run("replay", b.player.Replay)
		}
	case playbackState:
		switch {
		case key.Matches(msg, b.keymap.playPause):
			return b.run("play", b.player.TogglePlay)
		case key.Matches(msg, b.keymap.scrubBack):
			return b.scrub(-scrubStep)
		case key.Matches(msg, b.keymap.scrubForward):
			return b.scrub(scrubStep)
		case key.Matches(msg, b.keymap.commit):
			return b.commitScrub()
		case key.Matches(msg, b.keymap.replay):
			return b.run("replay", b.player.Replay)
		}
	}

	switch {
	case key.Matches(msg, b.keymap.captions):
		b.player.ToggleCaptions()
		if !b.video.HasCaptions {
			return notify("no captions for this video")
		}
	case key.Matches(msg, b.keymap.fullscreen):
		return b.run("fullscreen", func(context.Context) error { return b.player.ToggleFullscreen() })
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return nil
}

func (b *statefulBubble) updateOrientation(width, height int) tea.Cmd {
	o := orientationOf(width, height)
	if b.sized && o == b.orientation {
		return nil
	}
	first := !b.sized
	b.sized = true
	b.orientation = o
	if first && o == video.Portrait {
		return nil
	}
	return b.rotate(o)
}

func (b *statefulBubble) quit() tea.Cmd {
	b.unsubscribe()
	return tea.Quit
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return text }
}
