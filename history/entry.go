package history

import (
	"fmt"
	"strconv"
	"time"
)

// Entry is the locally remembered progress of one video.
type Entry struct {
	VideoID   int       `json:"video_id"`
	Name      string    `json:"name"`
	Progress  int       `json:"progress"`
	Watched   bool      `json:"watched"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Entry) key() string {
	return strconv.Itoa(e.VideoID)
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s : %d%%", e.Name, e.Progress)
}
