// Package analytics forwards playback transitions to the application's event sinks.
package analytics

import (
	"context"

	"github.com/carekiosk/kiosk/player"
)

// Event is a named playback event.
type Event string

const (
	BufferStarted     Event = "buffer-started"
	BufferCompleted   Event = "buffer-completed"
	PlaybackStarted   Event = "playback-started"
	PlaybackPaused    Event = "playback-paused"
	PlaybackCompleted Event = "playback-completed"
	VideoWatched      Event = "video-watched"
)

// EventFor names a transition.
func EventFor(t player.Transition) Event {
	switch t {
	case player.BufferStarted:
		return BufferStarted
	case player.BufferCompleted:
		return BufferCompleted
	case player.PlaybackStarted:
		return PlaybackStarted
	case player.PlaybackPaused:
		return PlaybackPaused
	default:
		return PlaybackCompleted
	}
}

// Payload accompanies every event.
type Payload struct {
	AssetID       int    `json:"assetId"`
	SessionID     string `json:"sessionId"`
	Platform      string `json:"platform"`
	PositionMs    int64  `json:"positionMs"`
	DurationMs    int64  `json:"durationMs"`
	VolumePercent int    `json:"volumePercent"`
}

// Emitter delivers events. Implementations must not block playback.
type Emitter interface {
	Emit(ctx context.Context, event Event, payload Payload)
}

// Emitters fans an event out to several emitters.
type Emitters []Emitter

func (e Emitters) Emit(ctx context.Context, event Event, payload Payload) {
	for _, emitter := range e {
		emitter.Emit(ctx, event, payload)
	}
}
