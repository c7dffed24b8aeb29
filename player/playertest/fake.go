// Package playertest provides an in-memory playback backend for tests.
package playertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/video"
)

// Fake is a player.Backend that records commands and lets the test drive status snapshots.
type Fake struct {
	mu     sync.Mutex
	calls  []string
	status video.Status
	closed bool

	// LoadErr and SeekErr are returned by the matching commands when set.
	LoadErr error
	SeekErr error

	// SeekGate, when set, holds every Seek until a value is received or ctx is done.
	SeekGate chan struct{}

	statuses player.Dispatcher[video.Status]
	errors   player.Dispatcher[error]
}

var _ player.Backend = (*Fake)(nil)

func New() *Fake {
	return &Fake{status: video.Status{Volume: 1}}
}

func (f *Fake) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *Fake) Load(_ context.Context, url, _ string) error {
	f.record("load %s", url)
	return f.LoadErr
}

func (f *Fake) Play(context.Context) error {
	f.record("play")
	return nil
}

func (f *Fake) Pause(context.Context) error {
	f.record("pause")
	return nil
}

func (f *Fake) Seek(ctx context.Context, position time.Duration, resume bool) error {
	if resume {
		f.record("seek %s resume", position)
	} else {
		f.record("seek %s", position)
	}
	if f.SeekGate != nil {
		select {
		case <-f.SeekGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.SeekErr
}

func (f *Fake) Status(context.Context) (video.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *Fake) Subscribe(l player.Listener) (cancel func()) {
	var cancels []func()
	if l.Status != nil {
		cancels = append(cancels, f.statuses.Subscribe(l.Status))
	}
	if l.Error != nil {
		cancels = append(cancels, f.errors.Subscribe(l.Error))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Emit delivers st to subscribers synchronously.
func (f *Fake) Emit(st video.Status) {
	f.mu.Lock()
	f.status = st
	f.mu.Unlock()
	f.statuses.Dispatch(st)
}

// Fail reports a hard playback error.
func (f *Fake) Fail(err error) {
	f.errors.Dispatch(err)
}

// Calls returns the commands received so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Playing is a loaded, playing snapshot at position within duration.
func Playing(position, duration time.Duration) video.Status {
	return video.Status{Position: position, Duration: duration, IsPlaying: true, IsLoaded: true, Volume: 1}
}

// Paused is a loaded, paused snapshot.
func Paused(position, duration time.Duration) video.Status {
	return video.Status{Position: position, Duration: duration, IsLoaded: true, Volume: 1}
}

// Finished is the end-of-media snapshot.
func Finished(duration time.Duration) video.Status {
	return video.Status{Position: duration, Duration: duration, IsLoaded: true, DidJustFinish: true, Volume: 1}
}
