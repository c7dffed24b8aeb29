package player

import (
	"sync"
	"time"

	"github.com/carekiosk/kiosk/video"
)

// properties caches observed mpv property values and turns them into status snapshots.
type properties struct {
	mu      sync.Mutex
	values  map[string]interface{}
	lastEOF bool
}

func (p *properties) set(name string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[name] = value
}

func (p *properties) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = make(map[string]interface{})
	p.lastEOF = false
}

// snapshot builds a status without consuming the end-of-file edge.
func (p *properties) snapshot() video.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, _ := p.build()
	return st
}

// tick builds a status and reports DidJustFinish only on the first snapshot after eof-reached turns true.
func (p *properties) tick() video.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, eof := p.build()
	st.DidJustFinish = eof && !p.lastEOF
	p.lastEOF = eof
	return st
}

func (p *properties) build() (video.Status, bool) {
	position := seconds(p.values["time-pos"])
	duration := seconds(p.values["duration"])
	paused := boolean(p.values["pause"], true)
	buffering := boolean(p.values["paused-for-cache"], false) || boolean(p.values["seeking"], false)
	eof := boolean(p.values["eof-reached"], false)

	volume := 1.0
	if v, ok := p.values["volume"].(float64); ok {
		volume = v / 100
	}

	loaded := duration > 0
	return video.Status{
		Position:    position,
		Duration:    duration,
		IsPlaying:   loaded && !paused && !buffering && !eof,
		IsBuffering: loaded && buffering,
		IsLoaded:    loaded,
		Volume:      volume,
	}, eof
}

func seconds(v interface{}) time.Duration {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func boolean(v interface{}, fallback bool) bool {
	b, ok := v.(bool)
	if !ok {
		return fallback
	}
	return b
}
