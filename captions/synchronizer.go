package captions

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/network"
	"github.com/carekiosk/kiosk/video"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Synchronizer owns the caption track of one video session.
// The track is loaded once; a failed load leaves the session without captions and is never retried.
type Synchronizer struct {
	client   *http.Client
	useCache bool

	mu      sync.Mutex
	cues    []Cue
	has     bool
	loaded  bool
	closed  bool
	current string
	sinks   []func(string)
}

// NewSynchronizer creates a synchronizer fetching through the public client, backed by the disk cache.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{client: network.Public, useCache: true}
}

// NewSynchronizerWith uses client and, when useCache is false, always fetches.
func NewSynchronizerWith(client *http.Client, useCache bool) *Synchronizer {
	return &Synchronizer{client: client, useCache: useCache}
}

// OnCaption registers a sink for caption text changes. An empty string clears the caption.
func (s *Synchronizer) OnCaption(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, fn)
}

// Load fetches and parses the track of desc. The result is discarded if Close was called meanwhile.
// Any failure leaves HasCaptions false; the returned error is informational.
func (s *Synchronizer) Load(ctx context.Context, desc video.Descriptor) error {
	s.mu.Lock()
	if s.loaded || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.loaded = true
	s.mu.Unlock()

	cues, err := s.fetch(ctx, desc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if err != nil {
		s.has = false
		return err
	}
	s.cues = cues
	s.has = len(cues) > 0
	if !s.has {
		return ErrNoCaptions
	}
	return nil
}

func (s *Synchronizer) fetch(ctx context.Context, desc video.Descriptor) ([]Cue, error) {
	url, err := URLFor(desc.PrimaryURL())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCaptions, err)
	}

	if s.useCache {
		if cues, ok := cache().Get(url).Get(); ok {
			log.Debugf("captions for video %d served from cache", desc.ID)
			return cues, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned %d", ErrNoCaptions, url, resp.StatusCode)
	}

	cues, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCaptions, err)
	}

	if s.useCache && len(cues) > 0 {
		if err := cache().Set(url, cues); err != nil {
			log.Warnf("caption cache write: %v", err)
		}
	}
	return cues, nil
}

// HasCaptions reports whether a non-empty track was loaded.
func (s *Synchronizer) HasCaptions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.has
}

// ResolveAt returns the text of the first cue, in source order, active at t.
func (s *Synchronizer) ResolveAt(t time.Duration) mo.Option[string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolve(s.cues, t)
}

func resolve(cues []Cue, t time.Duration) mo.Option[string] {
	cue, ok := lo.Find(cues, func(c Cue) bool { return c.Active(t) })
	if !ok {
		return mo.None[string]()
	}
	return mo.Some(cue.Text)
}

// Current returns the caption text last pushed to the sinks.
func (s *Synchronizer) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnTick resolves the caption at position and pushes it to the sinks when it changed.
func (s *Synchronizer) OnTick(position time.Duration) {
	s.mu.Lock()
	if s.closed || !s.has {
		s.mu.Unlock()
		return
	}
	text := resolve(s.cues, position).OrEmpty()
	if text == s.current {
		s.mu.Unlock()
		return
	}
	s.current = text
	sinks := s.sinks
	s.mu.Unlock()

	for _, sink := range sinks {
		sink(text)
	}
}

// Close drops the track and ignores any load still in flight.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cues = nil
	s.has = false
	s.sinks = nil
}
