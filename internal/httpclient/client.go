package httpclient

import (
	"net"
	"net/http"
	"time"
)

// ConnHeadroom is added to the concurrency limit to size the connection pool.
const ConnHeadroom = 5

// ClientOptions configures the per-run HTTP client.
type ClientOptions struct {
	// MaxConnsPerHost caps dialed connections to the target. Zero means no cap.
	MaxConnsPerHost int
	// Timeout bounds one request including the body. Zero means none.
	Timeout time.Duration
}

// NewClient builds the per-run client. It never follows redirects.
func NewClient(opts ClientOptions) *http.Client {
	timeout := opts.Timeout
	if timeout < 0 {
		timeout = 0
	}
	maxConns := opts.MaxConnsPerHost
	if maxConns < 0 {
		maxConns = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	idle := maxConns
	if idle == 0 {
		idle = 32
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxConnsPerHost:       maxConns,
		MaxIdleConns:          idle,
		MaxIdleConnsPerHost:   idle,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		// Redirects are recorded as responses, not followed.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
