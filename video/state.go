package video

import "time"

// SeekState tracks a scrub gesture from preview to backend acknowledgement.
type SeekState int

const (
	NotSeeking SeekState = iota
	Seeking
	Seeked
)

func (s SeekState) String() string {
	switch s {
	case NotSeeking:
		return "NotSeeking"
	case Seeking:
		return "Seeking"
	case Seeked:
		return "Seeked"
	default:
		return "Unknown"
	}
}

// Next validates a transition. Only NotSeeking→Seeking→Seeked→NotSeeking is allowed.
// A repeated Seeking (the gesture keeps moving) is accepted as a self-edge.
func (s SeekState) Next(to SeekState) (SeekState, bool) {
	switch {
	case s == NotSeeking && to == Seeking,
		s == Seeking && to == Seeking,
		s == Seeking && to == Seeked,
		s == Seeked && to == NotSeeking:
		return to, true
	default:
		return s, false
	}
}

// ControlsState is the visibility of the on-screen controls.
type ControlsState int

const (
	Visible ControlsState = iota
	Hiding
	Hidden
	Showing
)

func (c ControlsState) String() string {
	switch c {
	case Visible:
		return "Visible"
	case Hiding:
		return "Hiding"
	case Hidden:
		return "Hidden"
	case Showing:
		return "Showing"
	default:
		return "Unknown"
	}
}

// Orientation of the device or window.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// State is the video state owned by one mounted player.
type State struct {
	Fullscreen  bool
	Play        bool
	CurrentTime time.Duration
	Duration    time.Duration
	Controls    ControlsState
	Captions    bool
	HasCaptions bool
	Seek        SeekState
	Loaded      bool

	// PosterVisible is true before the first frame and again after the video finishes.
	PosterVisible bool
	// Failed is set when the backend reports a hard playback error. Err holds the cause.
	Failed bool
	Err    error
}

// Initial returns the state of a freshly mounted player.
func Initial() State {
	return State{
		Controls:      Visible,
		Captions:      true,
		PosterVisible: true,
	}
}

// ClampTime keeps CurrentTime inside [0, Duration] once the duration is known.
func (s *State) ClampTime() {
	if s.CurrentTime < 0 {
		s.CurrentTime = 0
	}
	if s.Loaded && s.Duration > 0 && s.CurrentTime > s.Duration {
		s.CurrentTime = s.Duration
	}
}
