package tui

import (
	"context"
	"time"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/internal/ui"
	"github.com/carekiosk/kiosk/orientation"
	"github.com/carekiosk/kiosk/style"
	"github.com/carekiosk/kiosk/util"
	"github.com/carekiosk/kiosk/video"
	"github.com/carekiosk/kiosk/watch"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

const (
	scrubStep        = 10 * time.Second
	scrubCommitDelay = 800 * time.Millisecond
)

// statefulBubble mirrors one mounted player and turns key presses into player actions.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	player *watch.Player
	chrome *orientation.Chrome
	ctx    context.Context

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	video        video.State
	finished     bool
	position     time.Duration
	duration     time.Duration
	caption      string
	watched      bool
	chromeHidden bool

	scrubbing bool
	scrubTo   time.Duration
	scrubGen  int

	orientation video.Orientation
	sized       bool

	statesChannel  chan video.State
	elapsedChannel chan elapsedMsg
	captionChannel chan string
	watchedChannel chan struct{}
	chromeChannel  chan bool
	done           chan struct{}
	cancels        []func()
	stopped        bool

	width, height int
	notifier      *ui.Model
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// resize propagates terminal dimension changes to the components.
func (b *statefulBubble) resize(width, height int) {
	x, _ := paddingStyle.GetFrameSize()
	styledWidth := width - x

	b.width = width
	b.height = height
	b.progressC.Width = max(styledWidth-clockWidth, 10)
	b.helpC.Width = styledWidth
}

// orientationOf treats a terminal as landscape once it is at least twice as wide as tall,
// since a cell is roughly twice as tall as it is wide.
func orientationOf(width, height int) video.Orientation {
	if width >= 2*height {
		return video.Landscape
	}
	return video.Portrait
}

func newBubble(ctx context.Context, options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		keymap: keymap,
		player: options.Player,
		chrome: options.Chrome,
		ctx:    ctx,
		video:  options.Player.State(),

		statesChannel:  make(chan video.State, 8),
		elapsedChannel: make(chan elapsedMsg, 1),
		captionChannel: make(chan string, 4),
		watchedChannel: make(chan struct{}, 1),
		chromeChannel:  make(chan bool, 2),
		done:           make(chan struct{}),

		notifier: &ui.Model{},
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(color.Spinner)

	bubble.progressC = progress.New(progress.WithGradient(style.ProgressFrom, style.ProgressTo), progress.WithoutPercentage())

	bubble.subscribe()
	bubble.setState(stateOf(bubble.video, false))

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
