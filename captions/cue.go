// Package captions fetches a video's caption track once and resolves the caption active at a playback position.
package captions

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/carekiosk/kiosk/constant"
)

// ErrNoCaptions is reported when a video has no usable caption track.
var ErrNoCaptions = errors.New("no captions")

// Cue is a caption fragment shown for Start <= t < End.
type Cue struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Active reports whether the cue is shown at t.
func (c Cue) Active(t time.Duration) bool {
	return c.Start <= t && t < c.End
}

// URLFor derives the caption track location from a stream URL:
// the manifest file name is replaced by kiosk_<assetFolder>_fpm4_<lang>.vtt and the query is dropped.
func URLFor(streamURL string) (string, error) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "", fmt.Errorf("parse stream url: %w", err)
	}
	if u.Path == "" || u.Host == "" {
		return "", fmt.Errorf("stream url %q has no asset path", streamURL)
	}

	dir := path.Dir(u.Path)
	folder := path.Base(dir)
	if folder == "/" || folder == "." {
		return "", fmt.Errorf("stream url %q has no asset folder", streamURL)
	}

	u.Path = path.Join(dir, fmt.Sprintf("kiosk_%s_fpm4_%s.vtt", folder, constant.CaptionLanguage))
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
