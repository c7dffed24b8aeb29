package video

import (
	"math"
	"time"
)

// Status is one playback snapshot reported by a backend.
// It is read once per tick and never stored.
type Status struct {
	Position      time.Duration
	Duration      time.Duration
	IsPlaying     bool
	IsBuffering   bool
	DidJustFinish bool
	IsLoaded      bool
	// Volume is in [0, 1].
	Volume float64
}

// Percent returns ceil(position/duration*100), or false when the duration is unknown.
func Percent(position, duration time.Duration) (int, bool) {
	if duration <= 0 {
		return 0, false
	}
	p := int(math.Ceil(float64(position) / float64(duration) * 100))
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return p, true
}
