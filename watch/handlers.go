package watch

import (
	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/video"
)

// onTick runs at tick frequency and never touches the state tree.
// The tick position is recorded first so a watched mark raised by this tick reports it.
func (p *Player) onTick(t player.Tick) {
	p.mu.Lock()
	p.status.Position = t.Position
	p.status.Duration = t.Duration
	p.mu.Unlock()

	if t.Finished {
		p.deps.Tracker.SetProgress(100)
	} else {
		p.deps.Tracker.SetProgress(t.Percent)
	}
	if p.deps.Captions != nil {
		p.deps.Captions.OnTick(t.Position)
	}
	p.elapsed.Dispatch(Elapsed{Position: t.Position, Duration: t.Duration})
}

func (p *Player) onEngine(snap player.Snapshot) {
	var playChanged bool
	p.update(func(s *video.State) {
		playChanged = s.Play != snap.Play
		s.Play = snap.Play
		s.Seek = snap.Seek
		s.CurrentTime = snap.CurrentTime
		s.Duration = snap.Duration
		s.Loaded = snap.Loaded
		s.Failed = snap.Failed
		s.Err = snap.Err
		switch {
		case snap.Finished:
			s.PosterVisible = true
		case snap.Play:
			s.PosterVisible = false
		}
	})
	if playChanged {
		_ = p.coordinator.SetPlaying(snap.Play)
	}
}

func (p *Player) onError(err error) {
	log.Errorf("video %d failed: %v", p.desc.ID, err)
}

func (p *Player) onTransition(ev player.TransitionEvent) {
	p.mu.Lock()
	p.status = ev.Status
	p.mu.Unlock()
	p.adapter.Handle(ev)
}

func (p *Player) onWatched() {
	log.Infof("video %d watched", p.desc.ID)
	if p.adapter != nil {
		p.mu.Lock()
		st := p.status
		p.mu.Unlock()
		p.adapter.Watched(st)
	}
	p.watched.Dispatch(struct{}{})
}

func (p *Player) onFullscreen(on bool) {
	p.update(func(s *video.State) { s.Fullscreen = on })
}

func (p *Player) onControls(c video.ControlsState) {
	p.update(func(s *video.State) { s.Controls = c })
}

func (p *Player) onCaption(text string) {
	p.mu.Lock()
	show := p.state.Captions && !p.unmounted
	p.mu.Unlock()
	if show {
		p.caption.Dispatch(text)
	}
}
