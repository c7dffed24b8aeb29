// Package player implements the playback engine and the backends it drives.
//
// A Backend wraps one native or browser playback handle. The Engine owns exactly one Backend,
// turns its status snapshots into normalized ticks and exposes the play, pause, seek and replay contract.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/carekiosk/kiosk/config"
	"github.com/carekiosk/kiosk/constant"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/video"
	"github.com/spf13/viper"
)

// Listener receives backend notifications. Either field may be nil.
type Listener struct {
	// Status is called at the backend's own cadence, independent of any rendering.
	Status func(video.Status)
	// Error is called for hard playback failures such as decode errors or an unreachable stream.
	Error func(error)
}

// Backend is the capability set every playback handle provides.
// Commands suspend until the handle acknowledges them or ctx is done.
type Backend interface {
	// Load opens the stream paused at position zero.
	Load(ctx context.Context, url, title string) error

	// Play resumes playback.
	Play(ctx context.Context) error

	// Pause suspends playback.
	Pause(ctx context.Context) error

	// Seek moves the playback position. With resume set, playback continues from the new position.
	Seek(ctx context.Context, position time.Duration, resume bool) error

	// Status returns the most recent snapshot.
	Status(ctx context.Context) (video.Status, error)

	// Subscribe registers l for status snapshots and errors until cancel is called.
	Subscribe(l Listener) (cancel func())

	// Close releases the handle. Further commands fail.
	Close() error
}

// New constructs the backend named by name, configured from the current settings.
func New(name string) (Backend, error) {
	interval := config.Millis(key.PlayerTickIntervalMs)
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	switch name {
	case constant.BackendMPV, "":
		return NewMPV(viper.GetString(key.PlayerMPVBinary), interval), nil
	case constant.BackendBrowser:
		return NewBrowser(viper.GetString(key.PlayerBrowserAddr)), nil
	default:
		return nil, fmt.Errorf("unknown playback backend %q", name)
	}
}

// listeners fans backend notifications out to subscribers.
type listeners struct {
	status Dispatcher[video.Status]
	errors Dispatcher[error]
}

func (l *listeners) subscribe(li Listener) func() {
	var cancels []func()
	if li.Status != nil {
		cancels = append(cancels, l.status.Subscribe(li.Status))
	}
	if li.Error != nil {
		cancels = append(cancels, l.errors.Subscribe(li.Error))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}
