// Package ratings is a client for the ratings service, which stores per-video ratings, bookmarks and watch progress.
package ratings

import (
	"fmt"

	"github.com/carekiosk/kiosk/progress"
	"github.com/samber/lo"
)

// Record is a stored rating entry. Every field but Video is optional.
type Record struct {
	ID           *int  `json:"id,omitempty"`
	Video        int   `json:"video"`
	Rating       *int  `json:"rating,omitempty"`
	Progress     *int  `json:"progress,omitempty"`
	SaveForLater *bool `json:"saveForLater,omitempty"`
}

// toProgress converts the entry to a progress record. Entries without progress count as zero;
// entries without an id cannot be updated and are reported as not convertible.
func (r Record) toProgress() (progress.Record, bool) {
	if r.ID == nil {
		return progress.Record{}, false
	}
	return progress.Record{
		ID:       *r.ID,
		Video:    r.Video,
		Progress: lo.FromPtr(r.Progress),
	}, true
}

func (r Record) String() string {
	return fmt.Sprintf("video %d: %d%%", r.Video, lo.FromPtr(r.Progress))
}

// Patch carries only the fields that changed.
type Patch struct {
	Rating       *int  `json:"rating,omitempty"`
	Progress     *int  `json:"progress,omitempty"`
	SaveForLater *bool `json:"saveForLater,omitempty"`
}

// creation is the POST payload.
type creation struct {
	Video    int `json:"video"`
	Progress int `json:"progress"`
}
