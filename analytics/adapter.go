package analytics

import (
	"context"
	"math"

	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/video"
	"github.com/google/uuid"
)

// Adapter turns engine transitions into analytics events for one viewing session.
type Adapter struct {
	emitter   Emitter
	assetID   int
	sessionID string
	platform  string
}

// NewAdapter starts a session for asset with a fresh session id.
func NewAdapter(emitter Emitter, assetID int, platform string) *Adapter {
	return &Adapter{
		emitter:   emitter,
		assetID:   assetID,
		sessionID: uuid.NewString(),
		platform:  platform,
	}
}

// SessionID identifies the viewing session in every payload.
func (a *Adapter) SessionID() string {
	return a.sessionID
}

// Handle forwards one transition.
func (a *Adapter) Handle(ev player.TransitionEvent) {
	a.emitter.Emit(context.Background(), EventFor(ev.Kind), a.payload(ev.Status))
}

// Watched forwards the one-time watched signal.
func (a *Adapter) Watched(st video.Status) {
	a.emitter.Emit(context.Background(), VideoWatched, a.payload(st))
}

func (a *Adapter) payload(st video.Status) Payload {
	return Payload{
		AssetID:       a.assetID,
		SessionID:     a.sessionID,
		Platform:      a.platform,
		PositionMs:    st.Position.Milliseconds(),
		DurationMs:    st.Duration.Milliseconds(),
		VolumePercent: int(math.Round(st.Volume * 100)),
	}
}
