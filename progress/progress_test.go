package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type call struct {
	op      string
	id      int
	percent int
}

type memoryStore struct {
	mu      sync.Mutex
	records []Record
	calls   []call
	err     error
}

func (m *memoryStore) Records(context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records, m.err
}

func (m *memoryStore) Create(_ context.Context, videoID, percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{"create", videoID, percent})
	return m.err
}

func (m *memoryStore) Update(_ context.Context, recordID, percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{"update", recordID, percent})
	return m.err
}

func TestTracker(t *testing.T) {
	Convey("Given a tracker", t, func() {
		tracker := NewTrackerWithThreshold(DefaultThreshold)
		fired := 0
		tracker.OnWatched(func() { fired++ })

		Convey("The high-water mark should be the maximum of the sequence", func() {
			for _, p := range []int{10, 40, 30, 55, 20} {
				tracker.SetProgress(p)
			}
			So(tracker.Max(), ShouldEqual, 55)

			Convey("And a non-increasing continuation should not change it", func() {
				for _, p := range []int{55, 50, 0} {
					tracker.SetProgress(p)
				}
				So(tracker.Max(), ShouldEqual, 55)
			})
		})

		Convey("Out of range percentages should be clamped", func() {
			tracker.SetProgress(140)
			So(tracker.Max(), ShouldEqual, 100)
			tracker.SetProgress(-3)
			So(tracker.Max(), ShouldEqual, 100)
		})

		Convey("The watched signal should fire once, only above the threshold", func() {
			tracker.SetProgress(95)
			So(fired, ShouldEqual, 0)
			So(tracker.Watched(), ShouldBeFalse)

			tracker.SetProgress(96)
			So(fired, ShouldEqual, 1)
			So(tracker.Watched(), ShouldBeTrue)

			tracker.SetProgress(100)
			tracker.SetProgress(97)
			So(fired, ShouldEqual, 1)
		})
	})

	Convey("NewTracker should fall back to the default threshold", t, func() {
		So(NewTracker().threshold, ShouldEqual, DefaultThreshold)
	})
}

func TestFlush(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store and a tracker", t, func() {
		store := &memoryStore{}
		tracker := NewTrackerWithThreshold(DefaultThreshold)

		Convey("Without a record and a positive mark, exactly one create should be issued", func() {
			tracker.SetProgress(42)
			So(tracker.Flush(ctx, store, 7, mo.None[Record]()), ShouldBeNil)
			So(store.calls, ShouldResemble, []call{{"create", 7, 42}})
		})

		Convey("Without a record and a zero mark, nothing should be issued", func() {
			So(tracker.Flush(ctx, store, 7, mo.None[Record]()), ShouldBeNil)
			So(store.calls, ShouldBeEmpty)
		})

		Convey("With a record at or above the mark, nothing should be issued", func() {
			tracker.SetProgress(60)
			So(tracker.Flush(ctx, store, 7, mo.Some(Record{ID: 3, Video: 7, Progress: 60})), ShouldBeNil)
			So(tracker.Flush(ctx, store, 7, mo.Some(Record{ID: 3, Video: 7, Progress: 80})), ShouldBeNil)
			So(store.calls, ShouldBeEmpty)
		})

		Convey("With a record below the mark, exactly one update should be issued", func() {
			tracker.SetProgress(75)
			So(tracker.Flush(ctx, store, 7, mo.Some(Record{ID: 3, Video: 7, Progress: 60})), ShouldBeNil)
			So(store.calls, ShouldResemble, []call{{"update", 3, 75}})
		})

		Convey("Store failures should be wrapped and returned", func() {
			store.err = errors.New("503")
			tracker.SetProgress(10)
			err := tracker.Flush(ctx, store, 7, mo.None[Record]())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, store.err), ShouldBeTrue)
		})

		Convey("FlushAsync should look up the last known record itself", func() {
			store.records = []Record{{ID: 1, Video: 2, Progress: 90}, {ID: 3, Video: 7, Progress: 20}}
			tracker.SetProgress(50)
			<-tracker.FlushAsync(store, 7)
			So(store.calls, ShouldResemble, []call{{"update", 3, 50}})
		})

		Convey("FlushAsync should swallow failures", func() {
			store.err = errors.New("offline")
			tracker.SetProgress(50)
			<-tracker.FlushAsync(store, 7)
			So(store.calls, ShouldBeEmpty)
		})
	})
}

func TestLastKnown(t *testing.T) {
	Convey("LastKnown should pick the first record of the video", t, func() {
		records := []Record{{ID: 1, Video: 2}, {ID: 4, Video: 7, Progress: 10}, {ID: 5, Video: 7, Progress: 30}}

		got, ok := LastKnown(records, 7).Get()
		So(ok, ShouldBeTrue)
		So(got.ID, ShouldEqual, 4)
		So(LastKnown(records, 9).IsAbsent(), ShouldBeTrue)
	})
}
