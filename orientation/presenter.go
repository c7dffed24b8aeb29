package orientation

import (
	"sync"

	"github.com/carekiosk/kiosk/log"
)

// Presenter switches the video in and out of fullscreen presentation.
type Presenter interface {
	EnterFullscreen() error
	ExitFullscreen() error
}

// FullscreenSetter is a playback handle with its own fullscreen call, such as the mpv window.
type FullscreenSetter interface {
	SetFullscreen(on bool) error
}

// Native presents through the playback handle's own fullscreen call.
type Native struct {
	target FullscreenSetter
}

func NewNative(target FullscreenSetter) *Native {
	return &Native{target: target}
}

func (n *Native) EnterFullscreen() error { return n.target.SetFullscreen(true) }

func (n *Native) ExitFullscreen() error { return n.target.SetFullscreen(false) }

// Chrome presents by flipping an application flag that strips the surrounding chrome.
// The surface observes the flag; forward, when set, also propagates it to the playback page.
type Chrome struct {
	forward func(hidden bool) error

	mu     sync.Mutex
	hidden bool
	subs   []func(hidden bool)
}

func NewChrome(forward func(hidden bool) error) *Chrome {
	return &Chrome{forward: forward}
}

// OnChange registers fn for flag changes.
func (c *Chrome) OnChange(fn func(hidden bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Hidden reports whether the chrome is stripped.
func (c *Chrome) Hidden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hidden
}

func (c *Chrome) EnterFullscreen() error { return c.set(true) }

func (c *Chrome) ExitFullscreen() error { return c.set(false) }

func (c *Chrome) set(hidden bool) error {
	c.mu.Lock()
	changed := c.hidden != hidden
	c.hidden = hidden
	subs := c.subs
	c.mu.Unlock()

	if !changed {
		return nil
	}
	for _, fn := range subs {
		fn(hidden)
	}
	if c.forward != nil {
		if err := c.forward(hidden); err != nil {
			// The flag is authoritative for the surface; a page that missed it catches up on the next change.
			log.Warnf("chrome flag not forwarded: %v", err)
		}
	}
	return nil
}
