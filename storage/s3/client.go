package s3

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Multipart transfers open up to Concurrency connections to one host.
const (
	maxIdleConnsPerHost = 64
	idleConnTimeout     = 90 * time.Second
	readIdleTimeout     = 30 * time.Second
	pingTimeout         = 15 * time.Second
)

// NewHTTPClient returns an HTTP client for S3 traffic with HTTP/2 health
// checks enabled on TLS connections.
func NewHTTPClient() (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = maxIdleConnsPerHost
	tr.IdleConnTimeout = idleConnTimeout

	h2, err := http2.ConfigureTransports(tr)
	if err != nil {
		return nil, err
	}
	h2.ReadIdleTimeout = readIdleTimeout
	h2.PingTimeout = pingTimeout
	return &http.Client{Transport: tr}, nil
}
