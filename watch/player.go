// Package watch composes one mounted video: it owns the video state, fans engine ticks out to progress,
// captions and the elapsed-time display, and routes viewer actions to the engine and coordinators.
package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/carekiosk/kiosk/analytics"
	"github.com/carekiosk/kiosk/controls"
	"github.com/carekiosk/kiosk/history"
	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/orientation"
	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/video"
	"github.com/samber/mo"
)

// Elapsed is the position shown next to the progress bar.
type Elapsed struct {
	Position time.Duration
	Duration time.Duration
}

// Player is the composition root of one mounted video. Mount and Unmount bracket its lifetime.
type Player struct {
	desc video.Descriptor
	deps Deps

	engine      *player.Engine
	controls    *controls.Controller
	coordinator *orientation.Coordinator
	guard       *orientation.Guard
	adapter     *analytics.Adapter

	mu        sync.Mutex
	state     video.State
	status    video.Status
	mounted   bool
	unmounted bool
	cancels   []func()
	previous  mo.Option[*history.Entry]

	wired        chan struct{}
	captionsDone chan struct{}
	flushed      <-chan struct{}

	states  player.Dispatcher[video.State]
	elapsed player.Dispatcher[Elapsed]
	caption player.Dispatcher[string]
	watched player.Dispatcher[struct{}]
}

// New prepares a player for desc. Nothing starts before Mount.
func New(desc video.Descriptor, deps Deps) (*Player, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if deps.Backend == nil || deps.Presenter == nil {
		return nil, errors.New("watch: backend and presenter are required")
	}
	deps.defaults()

	p := &Player{
		desc:         desc,
		deps:         deps,
		engine:       player.NewEngine(deps.Backend),
		state:        video.Initial(),
		wired:        make(chan struct{}),
		captionsDone: make(chan struct{}),
		previous:     mo.None[*history.Entry](),
	}
	if deps.Emitter != nil {
		p.adapter = analytics.NewAdapter(deps.Emitter, desc.ID, deps.Platform)
	}
	return p, nil
}

// Descriptor returns the mounted video.
func (p *Player) Descriptor() video.Descriptor { return p.desc }

// Mount acquires the orientation lock, wires the consumers and loads the stream.
// Captions load in the background; CaptionsReady is closed once they settled.
func (p *Player) Mount(ctx context.Context) error {
	p.mu.Lock()
	if p.mounted || p.unmounted {
		p.mu.Unlock()
		return nil
	}
	p.mounted = true
	p.mu.Unlock()

	guard, err := orientation.Acquire(p.deps.Lock)
	if err != nil {
		log.Warn(err)
	}
	p.guard = guard
	p.coordinator = orientation.NewCoordinator(p.deps.Presenter, guard)
	p.coordinator.OnChange(p.onFullscreen)

	p.controls = controls.New(p.deps.Clock, p.deps.Durations)
	p.controls.OnChange(p.onControls)

	p.cancels = append(p.cancels,
		p.engine.Subscribe(p.onTick),
		p.engine.OnChange(p.onEngine),
		p.engine.OnError(p.onError),
	)
	if p.adapter != nil {
		p.cancels = append(p.cancels, p.engine.OnTransition(p.onTransition))
	}
	p.deps.Tracker.OnWatched(p.onWatched)

	if entry, err := history.Lookup(p.desc.ID); err != nil {
		log.Warnf("history lookup: %v", err)
	} else {
		p.mu.Lock()
		p.previous = entry
		p.mu.Unlock()
	}

	if p.deps.Captions != nil {
		p.deps.Captions.OnCaption(p.onCaption)
		go p.loadCaptions()
	} else {
		p.update(func(s *video.State) { s.Captions = false })
		close(p.captionsDone)
	}
	close(p.wired)

	return p.engine.Start(ctx, p.desc)
}

func (p *Player) loadCaptions() {
	defer close(p.captionsDone)

	// Not tied to the mount context: an unmount never cancels the fetch, its result is dropped instead.
	err := p.deps.Captions.Load(context.Background(), p.desc)
	if err != nil {
		log.Infof("captions unavailable for video %d: %v", p.desc.ID, err)
	}
	has := p.deps.Captions.HasCaptions()
	p.update(func(s *video.State) {
		s.HasCaptions = has
		if !has {
			s.Captions = false
		}
	})
}

// Unmount tears the player down. The orientation policy is restored on every path,
// progress is flushed in the background and the local history is updated.
func (p *Player) Unmount() {
	p.mu.Lock()
	if !p.mounted || p.unmounted {
		// A player unmounted before it mounted never starts.
		p.unmounted = true
		p.mu.Unlock()
		return
	}
	p.unmounted = true
	p.mu.Unlock()

	<-p.wired
	p.mu.Lock()
	cancels := p.cancels
	p.cancels = nil
	p.mu.Unlock()

	if p.guard != nil {
		defer p.guard.Release()
	}

	for _, cancel := range cancels {
		cancel()
	}
	p.controls.Stop()
	p.coordinator.Close()
	if p.deps.Captions != nil {
		p.deps.Captions.Close()
	}
	if err := p.engine.Close(); err != nil {
		log.Warnf("close playback: %v", err)
	}

	tracker := p.deps.Tracker
	if p.deps.Store != nil {
		p.flushed = tracker.FlushAsync(p.deps.Store, p.desc.ID)
	}
	if p.deps.SaveHistory {
		if err := history.Save(p.desc, tracker.Max(), tracker.Watched()); err != nil {
			log.Warnf("history save: %v", err)
		}
	}
}

// Flushed is closed once the background progress flush started by Unmount finished. Nil when no flush ran.
func (p *Player) Flushed() <-chan struct{} { return p.flushed }

// CaptionsReady is closed once the caption load settled.
func (p *Player) CaptionsReady() <-chan struct{} { return p.captionsDone }

// Previous is the local history entry of this video from before the mount.
func (p *Player) Previous() mo.Option[*history.Entry] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.previous
}

// State returns a snapshot of the video state.
func (p *Player) State() video.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Finished reports whether playback reached the end and was not restarted since.
func (p *Player) Finished() bool { return p.engine.Snapshot().Finished }

// Progress returns the session's high-water mark.
func (p *Player) Progress() int { return p.deps.Tracker.Max() }

// Interactive reports whether the controls accept input.
func (p *Player) Interactive() bool {
	return p.controls != nil && p.controls.Interactive()
}

// OnState registers fn for discrete state changes.
func (p *Player) OnState(fn func(video.State)) (cancel func()) { return p.states.Subscribe(fn) }

// OnElapsed registers fn for the elapsed-time display, called at tick frequency.
func (p *Player) OnElapsed(fn func(position, duration time.Duration)) (cancel func()) {
	return p.elapsed.Subscribe(func(e Elapsed) { fn(e.Position, e.Duration) })
}

// OnCaption registers fn for caption text, called only when the shown text changes.
func (p *Player) OnCaption(fn func(string)) (cancel func()) { return p.caption.Subscribe(fn) }

// OnWatched registers fn for the one-time watched signal.
func (p *Player) OnWatched(fn func()) (cancel func()) {
	return p.watched.Subscribe(func(struct{}) { fn() })
}

// update applies fn to the state, keeps the time inside the duration and notifies on change.
// Changes to seek, play, captions or fullscreen restart the controls' idle period.
func (p *Player) update(fn func(*video.State)) {
	p.mu.Lock()
	if p.unmounted {
		p.mu.Unlock()
		return
	}
	old := p.state
	fn(&p.state)
	p.state.ClampTime()
	next := p.state
	p.mu.Unlock()

	if same(old, next) {
		return
	}
	if old.Seek != next.Seek || old.Play != next.Play || old.Captions != next.Captions || old.Fullscreen != next.Fullscreen {
		if p.controls != nil {
			p.controls.Poke()
		}
	}
	p.states.Dispatch(next)
}

func same(a, b video.State) bool {
	aErr, bErr := a.Err, b.Err
	a.Err, b.Err = nil, nil
	return a == b && (aErr == nil) == (bErr == nil)
}
