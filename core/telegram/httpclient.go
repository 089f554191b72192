package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/kinobot/core/telegram/netutil"
)

// HTTPClientOptions tunes the Bot API HTTP client. Zero values select defaults.
type HTTPClientOptions struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
func BuildHTTPClient(opts ...HTTPClientOptions) *http.Client {
	o := HTTPClientOptions{Timeout: 30 * time.Second, MaxRetries: 3, RetryBackoff: 2 * time.Second}
	if len(opts) > 0 {
		if opts[0].Timeout > 0 {
			o.Timeout = opts[0].Timeout
		}
		if opts[0].MaxRetries >= 0 {
			o.MaxRetries = opts[0].MaxRetries
		}
		if opts[0].RetryBackoff > 0 {
			o.RetryBackoff = opts[0].RetryBackoff
		}
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Timeout: o.Timeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: o.MaxRetries,
			backoff:    o.RetryBackoff,
		},
	}
}

// retryTransport replays requests whose body can be rewound after transient failures.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.maxRetries && netutil.ShouldRetry(err); attempt++ {
		if req.Body != nil && req.GetBody == nil {
			break
		}
		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}

		retry := req.Clone(req.Context())
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			retry.Body = body
		}
		resp, err = t.base.RoundTrip(retry)
	}
	return resp, err
}
