// Package video defines the playback data model shared by the engine, its consumers and the surfaces.
package video

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/mo"
)

// Descriptor identifies one prepared video and its streams.
type Descriptor struct {
	ID                int                `json:"id" jsonschema:"required,minimum=1"`
	Name              string             `json:"name" jsonschema:"required"`
	PosterURL         mo.Option[string]  `json:"posterUrl,omitempty" jsonschema:"type=string"`
	AdaptiveStreamURL string             `json:"adaptiveStreamUrl" jsonschema:"required"`
	ProgressiveURL    mo.Option[string]  `json:"progressiveUrl,omitempty" jsonschema:"type=string"`
}

// PrimaryURL is the stream handed to the backend: the adaptive manifest, or the progressive file when no manifest exists.
func (d *Descriptor) PrimaryURL() string {
	if d.AdaptiveStreamURL != "" {
		return d.AdaptiveStreamURL
	}
	return d.ProgressiveURL.OrEmpty()
}

// Validate reports descriptors the engine cannot play.
func (d *Descriptor) Validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("video id must be positive, got %d", d.ID)
	}

	primary := strings.TrimSpace(d.PrimaryURL())
	if primary == "" {
		return errors.New("video has no stream url")
	}

	u, err := url.Parse(primary)
	if err != nil {
		return fmt.Errorf("invalid stream url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "" {
		return fmt.Errorf("unsupported stream scheme: %s", u.Scheme)
	}

	return nil
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (#%d)", d.Name, d.ID)
}
