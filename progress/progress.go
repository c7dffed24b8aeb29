// Package progress tracks how far a viewer got into a video and persists it without ever lowering a stored value.
package progress

import (
	"context"
	"fmt"
	"sync"

	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// DefaultThreshold is the percentage a video has to exceed to count as watched.
const DefaultThreshold = 95

// Record is the persisted progress of one video.
type Record struct {
	ID       int
	Video    int
	Progress int
}

// Store persists progress records.
type Store interface {
	Records(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, videoID, percent int) error
	Update(ctx context.Context, recordID, percent int) error
}

// LastKnown returns the first stored record for videoID.
func LastKnown(records []Record, videoID int) mo.Option[Record] {
	record, ok := lo.Find(records, func(r Record) bool {
		return r.Video == videoID
	})
	if !ok {
		return mo.None[Record]()
	}
	return mo.Some(record)
}

// Tracker holds the high-water mark of one viewing session.
type Tracker struct {
	mu        sync.Mutex
	threshold int
	max       int
	watched   bool
	onWatched []func()
}

// NewTracker creates a tracker using the configured completion percentage.
func NewTracker() *Tracker {
	threshold := viper.GetInt(key.PlayerCompletionPercentage)
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return NewTrackerWithThreshold(threshold)
}

// NewTrackerWithThreshold creates a tracker that signals watched once progress exceeds threshold.
func NewTrackerWithThreshold(threshold int) *Tracker {
	return &Tracker{threshold: threshold}
}

// OnWatched registers fn for the one-time watched signal.
func (t *Tracker) OnWatched(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onWatched = append(t.onWatched, fn)
}

// SetProgress raises the high-water mark to percent and fires the watched signal the first time percent exceeds the threshold.
func (t *Tracker) SetProgress(percent int) {
	percent = util.Clamp(percent, 0, 100)

	t.mu.Lock()
	fire := percent > t.threshold && !t.watched
	if fire {
		t.watched = true
	}
	t.max = max(t.max, percent)
	callbacks := t.onWatched
	t.mu.Unlock()

	if fire {
		for _, fn := range callbacks {
			fn()
		}
	}
}

// Max returns the high-water mark.
func (t *Tracker) Max() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max
}

// Watched reports whether the watched signal has fired.
func (t *Tracker) Watched() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watched
}

// Flush persists the high-water mark for videoID.
// Without a last known record a positive mark is created; with one, the mark is written only when strictly greater.
func (t *Tracker) Flush(ctx context.Context, store Store, videoID int, lastKnown mo.Option[Record]) error {
	mark := t.Max()

	record, ok := lastKnown.Get()
	switch {
	case !ok && mark > 0:
		if err := store.Create(ctx, videoID, mark); err != nil {
			return fmt.Errorf("create progress for video %d: %w", videoID, err)
		}
		log.Infof("created progress %d%% for video %d", mark, videoID)
	case ok && mark > record.Progress:
		if err := store.Update(ctx, record.ID, mark); err != nil {
			return fmt.Errorf("update progress record %d: %w", record.ID, err)
		}
		log.Infof("updated progress record %d to %d%%", record.ID, mark)
	default:
		log.Debugf("progress %d%% for video %d needs no write", mark, videoID)
	}
	return nil
}

// FlushAsync reads the store's current records and flushes in the background.
// The result is never awaited; failures are logged and dropped.
func (t *Tracker) FlushAsync(store Store, videoID int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ctx := context.Background()
		records, err := store.Records(ctx)
		if err != nil {
			log.Warnf("progress flush skipped, records unavailable: %v", err)
			return
		}
		if err := t.Flush(ctx, store, videoID, LastKnown(records, videoID)); err != nil {
			log.Warn(err)
		}
	}()
	return done
}
