package player

import (
	"context"
	"sync"
	"time"

	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/video"
)

// Tick is a normalized playback update, delivered while media is playing and once more when it finishes.
type Tick struct {
	// Position is the backend position, or the last committed position while a scrub is in progress.
	Position time.Duration
	Duration time.Duration
	// Percent is ceil(Position/Duration*100).
	Percent  int
	Finished bool
}

// Transition is an edge in the backend's buffering or playing state.
type Transition int

const (
	BufferStarted Transition = iota
	BufferCompleted
	PlaybackStarted
	PlaybackPaused
	PlaybackCompleted
)

func (t Transition) String() string {
	switch t {
	case BufferStarted:
		return "buffer-started"
	case BufferCompleted:
		return "buffer-completed"
	case PlaybackStarted:
		return "playback-started"
	case PlaybackPaused:
		return "playback-paused"
	case PlaybackCompleted:
		return "playback-completed"
	default:
		return "unknown"
	}
}

// TransitionEvent pairs a transition with the snapshot that produced it.
type TransitionEvent struct {
	Kind   Transition
	Status video.Status
}

// Snapshot is the part of the video state the engine controls.
type Snapshot struct {
	Play        bool
	Seek        video.SeekState
	CurrentTime time.Duration
	Duration    time.Duration
	Loaded      bool
	Finished    bool
	Failed      bool
	Err         error
}

// Engine wraps one Backend. It owns the play and seek state, normalizes status snapshots into ticks
// and reports discrete changes, transitions, completion and hard errors to subscribers.
//
// Every operation issued after Close is a silent no-op, including acknowledgements that arrive late.
type Engine struct {
	backend Backend

	// cmdMu keeps backend commands for this handle strictly sequential.
	cmdMu sync.Mutex

	mu        sync.Mutex
	snap      Snapshot
	committed time.Duration
	prev      video.Status
	desc      video.Descriptor
	closed    bool
	unsub     func()

	ticks       Dispatcher[Tick]
	changes     Dispatcher[Snapshot]
	transitions Dispatcher[TransitionEvent]
	finished    Dispatcher[struct{}]
	errors      Dispatcher[error]
}

// NewEngine creates an engine owning b.
func NewEngine(b Backend) *Engine {
	return &Engine{backend: b}
}

// Subscribe registers fn for ticks.
func (e *Engine) Subscribe(fn func(Tick)) (cancel func()) { return e.ticks.Subscribe(fn) }

// OnChange registers fn for discrete state changes.
func (e *Engine) OnChange(fn func(Snapshot)) (cancel func()) { return e.changes.Subscribe(fn) }

// OnTransition registers fn for buffering and playing edges.
func (e *Engine) OnTransition(fn func(TransitionEvent)) (cancel func()) {
	return e.transitions.Subscribe(fn)
}

// OnFinished registers fn for the end of media.
func (e *Engine) OnFinished(fn func()) (cancel func()) {
	return e.finished.Subscribe(func(struct{}) { fn() })
}

// OnError registers fn for hard playback errors.
func (e *Engine) OnError(fn func(error)) (cancel func()) { return e.errors.Subscribe(fn) }

// Snapshot returns the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Start subscribes to the backend and loads the descriptor's primary stream.
func (e *Engine) Start(ctx context.Context, desc video.Descriptor) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.desc = desc
	if e.unsub == nil {
		e.unsub = e.backend.Subscribe(Listener{Status: e.handleStatus, Error: e.handleError})
	}
	e.mu.Unlock()

	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	if err := e.backend.Load(ctx, desc.PrimaryURL(), desc.Name); err != nil {
		e.handleError(err)
		return err
	}
	return nil
}

// Play resumes playback.
func (e *Engine) Play(ctx context.Context) error {
	return e.command(ctx, e.backend.Play, func(s *Snapshot) {
		s.Play = true
		s.Finished = false
	})
}

// Pause suspends playback.
func (e *Engine) Pause(ctx context.Context) error {
	return e.command(ctx, e.backend.Pause, func(s *Snapshot) {
		s.Play = false
	})
}

// Seek previews position t while the user scrubs. The backend position is not touched,
// so ticks keep reporting the last committed position until SeekEnd.
func (e *Engine) Seek(t time.Duration) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	next, ok := e.snap.Seek.Next(video.Seeking)
	if !ok {
		e.mu.Unlock()
		log.Debugf("seek preview ignored in state %s", next)
		return
	}
	e.snap.Seek = next
	e.snap.CurrentTime = e.clamp(t)
	snap := e.snap
	e.mu.Unlock()

	e.changes.Dispatch(snap)
}

// SeekEnd commits t to the backend with the intent to resume playing.
// Once the backend acknowledges, the scrub ends and play is set.
func (e *Engine) SeekEnd(ctx context.Context, t time.Duration) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	if e.snap.Seek == video.NotSeeking {
		// a tap on the scrubber without a drag
		e.snap.Seek = video.Seeking
	}
	e.snap.Seek, _ = e.snap.Seek.Next(video.Seeked)
	t = e.clamp(t)
	e.snap.CurrentTime = t
	snap := e.snap
	e.mu.Unlock()
	e.changes.Dispatch(snap)

	e.cmdMu.Lock()
	err := e.backend.Seek(ctx, t, true)
	e.cmdMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.snap.Seek, _ = e.snap.Seek.Next(video.NotSeeking)
	if err == nil {
		e.committed = t
		e.snap.Play = true
		e.snap.Finished = false
	} else {
		e.snap.CurrentTime = e.committed
	}
	snap = e.snap
	e.mu.Unlock()
	e.changes.Dispatch(snap)

	return err
}

// Replay rewinds to the start and plays.
func (e *Engine) Replay(ctx context.Context) error {
	return e.command(ctx, func(ctx context.Context) error {
		if err := e.backend.Seek(ctx, 0, false); err != nil {
			return err
		}
		return e.backend.Play(ctx)
	}, func(s *Snapshot) {
		s.Play = true
		s.Finished = false
		s.CurrentTime = 0
		e.committed = 0
	})
}

// Retry reloads the stream after a hard error and returns to the last committed position, paused.
func (e *Engine) Retry(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	desc := e.desc
	at := e.committed
	e.snap.Failed = false
	e.snap.Err = nil
	e.snap.Loaded = false
	e.snap.Play = false
	e.prev = video.Status{}
	snap := e.snap
	e.mu.Unlock()
	e.changes.Dispatch(snap)

	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()

	if err := e.backend.Load(ctx, desc.PrimaryURL(), desc.Name); err != nil {
		e.handleError(err)
		return err
	}
	if at > 0 {
		if err := e.backend.Seek(ctx, at, false); err != nil {
			e.handleError(err)
			return err
		}
	}
	return nil
}

// Close tears the engine down and releases the backend. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	unsub := e.unsub
	e.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	return e.backend.Close()
}

// command runs a backend call and, once acknowledged, applies mutate unless the engine was closed meanwhile.
func (e *Engine) command(ctx context.Context, call func(context.Context) error, mutate func(*Snapshot)) error {
	if e.isClosed() {
		return nil
	}

	e.cmdMu.Lock()
	err := call(ctx)
	e.cmdMu.Unlock()
	if err != nil {
		if e.isClosed() {
			return nil
		}
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	mutate(&e.snap)
	snap := e.snap
	e.mu.Unlock()

	e.changes.Dispatch(snap)
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// clamp keeps t inside [0, duration] once the duration is known. Callers hold e.mu.
func (e *Engine) clamp(t time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if e.snap.Duration > 0 && t > e.snap.Duration {
		return e.snap.Duration
	}
	return t
}

// handleStatus normalizes one backend snapshot. Snapshots arrive in time order on the backend's goroutine.
func (e *Engine) handleStatus(st video.Status) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	changed := false
	if st.IsLoaded && !e.snap.Loaded {
		e.snap.Loaded = true
		changed = true
	}
	if st.Duration > 0 && e.snap.Duration == 0 {
		e.snap.Duration = st.Duration
		changed = true
	}

	edges := transitions(e.prev, st)
	e.prev = st

	var tick *Tick
	switch {
	case st.DidJustFinish:
		e.snap.Play = false
		e.snap.Finished = true
		e.snap.CurrentTime = e.snap.Duration
		e.committed = e.snap.Duration
		changed = true
		tick = &Tick{Position: e.snap.Duration, Duration: e.snap.Duration, Percent: 100, Finished: true}

	case st.IsPlaying && e.snap.Duration > 0:
		position := e.committed
		if e.snap.Seek == video.NotSeeking {
			position = e.clamp(st.Position)
			e.committed = position
			e.snap.CurrentTime = position
		}
		percent, _ := video.Percent(position, e.snap.Duration)
		tick = &Tick{Position: position, Duration: e.snap.Duration, Percent: percent}
	}

	// The backend can be paused or resumed from outside (mpv window, browser controls).
	if e.snap.Seek == video.NotSeeking {
		for _, edge := range edges {
			switch {
			case edge == PlaybackStarted && !e.snap.Play:
				e.snap.Play = true
				e.snap.Finished = false
				changed = true
			case edge == PlaybackPaused && e.snap.Play:
				e.snap.Play = false
				changed = true
			}
		}
	}

	snap := e.snap
	e.mu.Unlock()

	for _, edge := range edges {
		e.transitions.Dispatch(TransitionEvent{Kind: edge, Status: st})
	}
	if changed {
		e.changes.Dispatch(snap)
	}
	if tick != nil {
		e.ticks.Dispatch(*tick)
		if tick.Finished {
			e.finished.Dispatch(struct{}{})
		}
	}
}

func (e *Engine) handleError(err error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.snap.Failed = true
	e.snap.Err = err
	e.snap.Play = false
	snap := e.snap
	e.mu.Unlock()

	log.Errorf("playback failed: %v", err)
	e.changes.Dispatch(snap)
	e.errors.Dispatch(err)
}

// transitions derives the edges between two consecutive snapshots.
func transitions(prev, cur video.Status) []Transition {
	var edges []Transition

	if cur.IsBuffering && !prev.IsBuffering {
		edges = append(edges, BufferStarted)
	}
	if !cur.IsBuffering && prev.IsBuffering {
		edges = append(edges, BufferCompleted)
	}

	if cur.DidJustFinish {
		return append(edges, PlaybackCompleted)
	}

	// Buffering while meant to play is not a pause.
	wasActive := prev.IsPlaying || prev.IsBuffering
	isActive := cur.IsPlaying || cur.IsBuffering
	switch {
	case cur.IsPlaying && !prev.IsPlaying && !prev.IsBuffering:
		edges = append(edges, PlaybackStarted)
	case !isActive && wasActive:
		edges = append(edges, PlaybackPaused)
	}

	return edges
}
