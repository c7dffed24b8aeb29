// Package controls drives the visibility of the on-screen playback controls.
//
// Controls fade out after a period without interaction and fade back in on a tap:
//
//	Visible --idle--> Hiding --fade out--> Hidden --tap--> Showing --fade in--> Visible
//
// The discrete state only changes once a fade completes. Controls accept input only while Visible.
package controls

import (
	"sync"
	"time"

	"github.com/carekiosk/kiosk/config"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/video"
)

const (
	DefaultIdle = 4000 * time.Millisecond
	DefaultHide = 500 * time.Millisecond
	DefaultShow = 250 * time.Millisecond
)

// Durations of the idle period and of both fades.
type Durations struct {
	Idle time.Duration
	Hide time.Duration
	Show time.Duration
}

// Configured reads the durations from config, falling back to the defaults for unset values.
func Configured() Durations {
	d := Durations{
		Idle: config.Millis(key.ControlsIdleMs),
		Hide: config.Millis(key.ControlsHideMs),
		Show: config.Millis(key.ControlsShowMs),
	}
	if d.Idle <= 0 {
		d.Idle = DefaultIdle
	}
	if d.Hide <= 0 {
		d.Hide = DefaultHide
	}
	if d.Show <= 0 {
		d.Show = DefaultShow
	}
	return d
}

// Controller is the visibility state machine. It starts Visible with the idle timer armed.
type Controller struct {
	clock     Clock
	durations Durations

	mu      sync.Mutex
	state   video.ControlsState
	timer   Timer
	gen     uint64
	stopped bool
	subs    []func(video.ControlsState)
}

// New creates a controller and arms its idle timer.
func New(clock Clock, durations Durations) *Controller {
	c := &Controller{
		clock:     clock,
		durations: durations,
		state:     video.Visible,
	}
	c.mu.Lock()
	c.arm(durations.Idle, c.beginHide)
	c.mu.Unlock()
	return c
}

// OnChange registers fn for state changes. Callbacks run on the timer goroutine or the caller's.
func (c *Controller) OnChange(fn func(video.ControlsState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// State returns the current visibility.
func (c *Controller) State() video.ControlsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Interactive reports whether the controls accept input. Only fully visible controls do.
func (c *Controller) Interactive() bool {
	return c.State() == video.Visible
}

// Touch handles a tap on the video surface: hidden controls start showing, visible ones restart the idle period.
// Taps during a fade are ignored.
func (c *Controller) Touch() {
	c.mu.Lock()
	switch {
	case c.stopped:
		c.mu.Unlock()
	case c.state == video.Hidden:
		c.transition(video.Showing, c.durations.Show, c.finishShow)
	case c.state == video.Visible:
		c.arm(c.durations.Idle, c.beginHide)
		c.mu.Unlock()
	default:
		c.mu.Unlock()
	}
}

// Poke restarts the idle period if the controls are visible. Call it on qualifying state changes.
func (c *Controller) Poke() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state != video.Visible {
		return
	}
	c.arm(c.durations.Idle, c.beginHide)
}

// Stop cancels pending timers. Further calls have no effect.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// beginHide, finishHide and finishShow run from timers with c.mu held.
func (c *Controller) beginHide() {
	c.transition(video.Hiding, c.durations.Hide, c.finishHide)
}

func (c *Controller) finishHide() {
	c.transition(video.Hidden, 0, nil)
}

func (c *Controller) finishShow() {
	c.transition(video.Visible, c.durations.Idle, c.beginHide)
}

// transition switches state, arms the follow-up timer, releases the lock and notifies subscribers.
// Callers hold c.mu.
func (c *Controller) transition(to video.ControlsState, after time.Duration, next func()) {
	c.state = to
	if next != nil {
		c.arm(after, next)
	} else {
		c.disarm()
	}
	subs := c.subs
	c.mu.Unlock()

	for _, fn := range subs {
		fn(to)
	}
}

// arm replaces the pending timer. Callbacks of replaced timers are discarded by generation.
// f is called with c.mu held and must release it.
func (c *Controller) arm(d time.Duration, f func()) {
	c.disarm()
	gen := c.gen
	c.timer = c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		if gen != c.gen || c.stopped {
			c.mu.Unlock()
			return
		}
		f()
	})
}

func (c *Controller) disarm() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
