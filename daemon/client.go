// Package daemon talks to the local streaming daemon that resolves channels into
// playable streams and reports per-segment timing.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/streampane/streampane/auth"
	"github.com/streampane/streampane/key"
	"github.com/streampane/streampane/network"
	"github.com/streampane/streampane/util"
)

// ErrStatus is wrapped by every error caused by a non-2xx daemon response.
var ErrStatus = errors.New("unexpected daemon status")

// TokenSource returns the OAuth token to attach, or "" for none.
type TokenSource func() string

// Client builds daemon URLs and performs its requests.
type Client struct {
	base  *url.URL
	token TokenSource
	http  *http.Client
}

// New creates a client for the daemon at baseURL, e.g. http://127.0.0.1:8181.
// A nil token source sends no oauth parameter.
func New(baseURL string, token TokenSource) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("daemon url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("daemon url %q: missing scheme or host", baseURL)
	}

	if token == nil {
		token = func() string { return "" }
	}

	return &Client{base: base, token: token, http: network.Client}, nil
}

// FromConfig creates a client for the configured daemon address using the keyring token.
func FromConfig() (*Client, error) {
	host := net.JoinHostPort(viper.GetString(key.DaemonHost), strconv.Itoa(viper.GetInt(key.DaemonPort)))
	return New("http://"+host, auth.Token)
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// BaseURL is the daemon root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) withToken(query url.Values) url.Values {
	if token := c.token(); token != "" {
		query.Set("oauth", token)
	}
	return query
}

func (c *Client) do(ctx context.Context, method, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrStatus, method, req.URL.Path, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// StreamIndex lists the variants available for channel.
func (c *Client) StreamIndex(ctx context.Context, channel string) (StreamIndex, error) {
	query := c.withToken(url.Values{"channel": {channel}})

	body, err := c.do(ctx, http.MethodGet, c.endpoint("stream_index", query))
	if err != nil {
		return StreamIndex{}, fmt.Errorf("stream index for %s: %w", channel, err)
	}

	var index StreamIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return StreamIndex{}, fmt.Errorf("stream index for %s: %w", channel, err)
	}
	return index, nil
}

// Metadata returns the timing of the segment most recently served for the playback keyed by metaKey.
func (c *Client) Metadata(ctx context.Context, channel, quality, metaKey string) (SegmentMetadata, error) {
	query := url.Values{"channel": {channel}}
	if quality != "" {
		query.Set("quality", quality)
	}
	query.Set("key", metaKey)

	body, err := c.do(ctx, http.MethodGet, c.endpoint("meta", query))
	if err != nil {
		return SegmentMetadata{}, fmt.Errorf("metadata for %s: %w", channel, err)
	}

	var meta SegmentMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return SegmentMetadata{}, fmt.Errorf("metadata for %s: %w", channel, err)
	}
	return meta, nil
}

// PlaybackURL is the stream URL handed to the media engine. It is built, never fetched here.
func (c *Client) PlaybackURL(channel, quality, metaKey string) string {
	query := url.Values{"channel": {channel}}
	if quality != "" {
		query.Set("quality", quality)
	}
	query = c.withToken(query)
	query.Set("meta_key", metaKey)
	return c.endpoint("play", query)
}

// Version reports the daemon's version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint("version", nil))
	if err != nil {
		return "", fmt.Errorf("daemon version: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

// Quit asks the daemon to shut down.
func (c *Client) Quit(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, c.endpoint("quit", nil)); err != nil {
		return fmt.Errorf("daemon quit: %w", err)
	}
	return nil
}
