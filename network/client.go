// Package network provides the HTTP client used for provider metadata lookups.
package network

import (
	"net/http"
	"time"
)

// Client is shared by every outgoing request. Lookups are small and run in
// short bursts, so the pool stays modest and timeouts are tight.
var Client = &http.Client{
	Timeout:   15 * time.Second,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 16
	t.MaxIdleConnsPerHost = 4
	t.MaxConnsPerHost = 8
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second
	return t
}
