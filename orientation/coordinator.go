// Package orientation reconciles device rotation and the fullscreen toggle into one fullscreen flag.
//
// A single Coordinator owns both intents. Rotating to landscape while playing enters fullscreen, rotating back
// or stopping reverses what rotation entered, and the explicit toggle enters or leaves fullscreen while
// locking the orientation. Intents are serialized; the last one wins.
package orientation

import (
	"sync"

	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/video"
)

type source int

const (
	fromRotation source = iota
	fromToggle
)

// Coordinator is the only writer of the fullscreen flag.
type Coordinator struct {
	presenter Presenter
	guard     *Guard

	mu          sync.Mutex
	orientation video.Orientation
	playing     bool
	fullscreen  bool
	automatic   bool
	pending     bool
	subs        []func(bool)
}

// NewCoordinator creates a coordinator presenting through p. guard may be nil when no lock is held.
func NewCoordinator(p Presenter, guard *Guard) *Coordinator {
	return &Coordinator{presenter: p, guard: guard}
}

// OnChange registers fn for changes of the fullscreen flag.
func (c *Coordinator) OnChange(fn func(fullscreen bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Fullscreen reports the shared flag.
func (c *Coordinator) Fullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen
}

// Rotate handles a device orientation change.
func (c *Coordinator) Rotate(o video.Orientation) error {
	c.mu.Lock()
	c.orientation = o
	var err error
	switch {
	case o == video.Landscape && c.playing:
		err = c.set(true, fromRotation)
	case o == video.Portrait:
		err = c.set(false, fromRotation)
	}
	return c.unlockAndNotify(err)
}

// SetPlaying tells the coordinator whether playback is running.
// Starting in landscape enters fullscreen; stopping leaves a fullscreen that rotation entered.
func (c *Coordinator) SetPlaying(playing bool) error {
	c.mu.Lock()
	if c.playing == playing {
		c.mu.Unlock()
		return nil
	}
	c.playing = playing
	var err error
	switch {
	case playing && c.orientation == video.Landscape:
		err = c.set(true, fromRotation)
	case !playing && c.automatic:
		err = c.set(false, fromRotation)
	}
	return c.unlockAndNotify(err)
}

// Toggle flips fullscreen on explicit request, locking landscape on entry and unlocking on exit.
func (c *Coordinator) Toggle() error {
	c.mu.Lock()
	return c.unlockAndNotify(c.set(!c.fullscreen, fromToggle))
}

// Close leaves fullscreen. Failures are logged.
func (c *Coordinator) Close() {
	c.mu.Lock()
	_ = c.unlockAndNotify(c.set(false, fromRotation))
}

// set applies the flag. Callers hold c.mu; notifications are queued for unlockAndNotify.
func (c *Coordinator) set(on bool, from source) error {
	if on == c.fullscreen {
		if on && from == fromToggle {
			c.automatic = false
		}
		return nil
	}

	var err error
	if on {
		err = c.presenter.EnterFullscreen()
	} else {
		err = c.presenter.ExitFullscreen()
	}
	if err != nil {
		return err
	}

	c.fullscreen = on
	c.automatic = on && from == fromRotation
	c.pending = true

	if c.guard != nil {
		policy := c.guard.Original()
		if on && from == fromToggle {
			policy = LockLandscape
		}
		if err := c.guard.Set(policy); err != nil {
			log.Warnf("orientation lock %s: %v", policy, err)
		}
	}
	return nil
}

func (c *Coordinator) unlockAndNotify(err error) error {
	notify := c.pending
	c.pending = false
	fullscreen := c.fullscreen
	subs := c.subs
	c.mu.Unlock()

	if notify {
		for _, fn := range subs {
			fn(fullscreen)
		}
	}
	if err != nil {
		log.Warnf("fullscreen presentation: %v", err)
	}
	return err
}
