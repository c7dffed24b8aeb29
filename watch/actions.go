package watch

import (
	"context"
	"time"

	"github.com/carekiosk/kiosk/video"
)

// TogglePlay pauses a playing video, replays a finished one and plays otherwise.
func (p *Player) TogglePlay(ctx context.Context) error {
	state := p.State()
	snap := p.engine.Snapshot()
	switch {
	case state.Failed:
		return p.Retry(ctx)
	case snap.Finished:
		return p.engine.Replay(ctx)
	case state.Play:
		return p.engine.Pause(ctx)
	default:
		return p.engine.Play(ctx)
	}
}

// SeekPreview moves the scrubber without moving playback.
func (p *Player) SeekPreview(t time.Duration) {
	p.engine.Seek(t)
}

// SeekCommit moves playback to t and resumes.
func (p *Player) SeekCommit(ctx context.Context, t time.Duration) error {
	return p.engine.SeekEnd(ctx, t)
}

// Replay starts the video over.
func (p *Player) Replay(ctx context.Context) error {
	return p.engine.Replay(ctx)
}

// Retry reloads the stream after a playback failure.
func (p *Player) Retry(ctx context.Context) error {
	return p.engine.Retry(ctx)
}

// ToggleCaptions shows or hides captions. Without a caption track it does nothing.
func (p *Player) ToggleCaptions() {
	var on, has bool
	p.update(func(s *video.State) {
		if s.HasCaptions {
			s.Captions = !s.Captions
		}
		on, has = s.Captions, s.HasCaptions
	})
	if !has {
		return
	}
	if on {
		p.caption.Dispatch(p.deps.Captions.Current())
	} else {
		p.caption.Dispatch("")
	}
}

// ToggleFullscreen is the explicit fullscreen button.
func (p *Player) ToggleFullscreen() error {
	if p.coordinator == nil {
		return nil
	}
	return p.coordinator.Toggle()
}

// Rotate reports a device orientation change.
func (p *Player) Rotate(o video.Orientation) error {
	if p.coordinator == nil {
		return nil
	}
	return p.coordinator.Rotate(o)
}

// Tap is a touch on the video surface.
func (p *Player) Tap() {
	if p.controls != nil {
		p.controls.Touch()
	}
}
