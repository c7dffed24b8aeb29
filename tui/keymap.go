package tui

import (
	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/style"
	"github.com/charmbracelet/bubbles/key"
)

// statefulKeymap holds the bindings of the player surface; help follows the surface state.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	playPause,
	scrubBack, scrubForward, commit,
	replay, retry,
	captions, fullscreen,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		scrubBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "rewind"),
		),
		scrubForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "jump"),
		),
		replay: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replay"),
		),
		retry: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "try again"),
		),
		captions: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "captions"),
		),
		fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case loadingState:
		return h(k.quit), h(k.quit, k.forceQuit)
	case playbackState:
		return h(k.playPause, k.scrubBack, k.scrubForward, k.captions, k.showHelp),
			h(k.playPause, k.scrubBack, k.scrubForward, k.commit, k.replay, k.captions, k.fullscreen, k.quit)
	case finishedState:
		return h(k.replay, k.quit), h(k.replay, k.captions, k.fullscreen, k.quit)
	case errorState:
		return h(k.retry, k.quit), h(k.retry, k.quit, k.forceQuit)
	default:
		return h(), h()
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
