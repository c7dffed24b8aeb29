package ratings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/network"
	"github.com/carekiosk/kiosk/progress"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrUnauthorized is returned when the service rejects the stored token.
var ErrUnauthorized = errors.New("ratings: unauthorized (run `kiosk auth login`)")

// Client talks to the ratings service. It implements progress.Store.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ progress.Store = (*Client)(nil)

// New creates a client for endpoint using the shared authenticated http client.
func New(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     network.Client,
	}
}

// FromConfig returns a client for the configured endpoint, or false when ratings are disabled.
func FromConfig() (*Client, bool) {
	endpoint := viper.GetString(key.RatingsEndpoint)
	if !viper.GetBool(key.RatingsEnable) || endpoint == "" {
		return nil, false
	}
	return New(endpoint), true
}

// List returns every rating entry of the signed-in viewer.
func (c *Client) List(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := c.do(ctx, http.MethodGet, "/ratings", nil, &records); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return records, nil
}

// Records implements progress.Store.
func (c *Client) Records(ctx context.Context) ([]progress.Record, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(records, func(r Record, _ int) (progress.Record, bool) {
		return r.toProgress()
	}), nil
}

// Create implements progress.Store.
func (c *Client) Create(ctx context.Context, videoID, percent int) error {
	if err := c.do(ctx, http.MethodPost, "/ratings", creation{Video: videoID, Progress: percent}, nil); err != nil {
		return fmt.Errorf("create rating: %w", err)
	}
	return nil
}

// Update implements progress.Store by patching only the progress field.
func (c *Client) Update(ctx context.Context, recordID, percent int) error {
	return c.Patch(ctx, recordID, Patch{Progress: lo.ToPtr(percent)})
}

// Patch sends the changed fields of record id.
func (c *Client) Patch(ctx context.Context, id int, patch Patch) error {
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/ratings/%d", id), patch, nil); err != nil {
		return fmt.Errorf("patch rating %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
