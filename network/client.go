// Package network provides the pre-configured HTTP clients shared by the ratings and caption fetchers.
package network

import (
	"net/http"
	"time"

	"github.com/carekiosk/kiosk/constant"
)

// TokenSource yields the bearer token attached by the authenticated client.
type TokenSource func() (string, error)

// Client is the authenticated client used for the ratings service.
// It starts without a token source; call Authenticate to install one.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: &bearerTransport{base: newTransport()},
}

// Public is used for resources that must never carry the viewer's credentials, such as caption tracks.
var Public = &http.Client{
	Timeout:   time.Minute,
	Transport: &userAgentTransport{base: newTransport()},
}

// Authenticate installs the token source consulted by Client on every request.
func Authenticate(source TokenSource) {
	Client.Transport.(*bearerTransport).source = source
}

// newTransport initializes a tuned http.Transport with pooled connections and bounded header waits.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 20
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", constant.UserAgent)
	r.Header.Del("Authorization")
	return t.base.RoundTrip(r)
}

type bearerTransport struct {
	base   http.RoundTripper
	source TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", constant.UserAgent)
	if t.source != nil {
		token, err := t.source()
		if err != nil {
			return nil, err
		}
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return t.base.RoundTrip(r)
}
