// Package history keeps a disk-backed mirror of watch progress so the kiosk knows what was watched without the ratings service.
package history

import (
	"sort"
	"strconv"
	"time"

	"github.com/carekiosk/kiosk/filesystem"
	"github.com/carekiosk/kiosk/video"
	"github.com/carekiosk/kiosk/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every remembered entry keyed by video id.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// List returns the entries, most recently updated first.
func List() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}
	entries := lo.Values(saved)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// Lookup returns the entry for videoID.
func Lookup(videoID int) (mo.Option[*Entry], error) {
	saved, err := Get()
	if err != nil {
		return mo.None[*Entry](), err
	}
	entry, ok := saved[strconv.Itoa(videoID)]
	if !ok {
		return mo.None[*Entry](), nil
	}
	return mo.Some(entry), nil
}

// Save records the progress of desc. A stored value is never lowered and watched is never cleared.
func Save(desc video.Descriptor, percent int, watched bool) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	entry := &Entry{
		VideoID:   desc.ID,
		Name:      desc.Name,
		Progress:  percent,
		Watched:   watched,
		UpdatedAt: time.Now(),
	}

	if existing, ok := saved[entry.key()]; ok {
		entry.Progress = max(entry.Progress, existing.Progress)
		entry.Watched = entry.Watched || existing.Watched
	}

	saved[entry.key()] = entry
	return cacher.Set(saved)
}

// Remove forgets a single entry.
func Remove(entry *Entry) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, entry.key())
	return cacher.Set(saved)
}

// Clear forgets everything.
func Clear() error {
	return cacher.Set(make(map[string]*Entry))
}
