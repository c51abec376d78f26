// Package network provides the HTTP client shared by everything that talks to the streaming daemon.
package network

import (
	"net/http"
	"time"
)

// Client is the HTTP client shared across panes.
// The daemon is local and every pane polls it, so idle connections are kept per host.
// There is no overall timeout: requests end when their context is cancelled.
var Client = &http.Client{
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 32
	t.MaxIdleConnsPerHost = 32
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second
	return t
}
