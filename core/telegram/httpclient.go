package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/vocabot/core/telegram/netutil"
)

// Transport limits for calls to the Bot API. The client timeout leaves room
// for a long-poll getUpdates call plus a retry.
const (
	dialTimeout     = 5 * time.Second
	tlsTimeout      = 5 * time.Second
	idleConnTimeout = 90 * time.Second
	clientTimeout   = 45 * time.Second
	keepAlive       = 30 * time.Second

	transportRetries = 2
	transportBackoff = 500 * time.Millisecond
)

// BuildHTTPClient returns the client telebot uses for Bot API calls. Failed
// connection attempts are retried by the transport; higher-level retries of
// sends happen in the dispatcher.
func BuildHTTPClient() *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   clientTimeout,
		Transport: &retryTransport{base: base, retries: transportRetries, backoff: transportBackoff},
	}
}

// retryTransport repeats a request whose connection could not be set up.
// Requests with a body are only repeated when the body can be rewound.
type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries; attempt++ {
		if netutil.Kind(err) != netutil.KindDial && netutil.Kind(err) != netutil.KindReset {
			return nil, err
		}
		next, rewindErr := rewind(req)
		if rewindErr != nil {
			return nil, err
		}
		if sleepErr := netutil.Sleep(req.Context(), netutil.Backoff(err, t.backoff, attempt)); sleepErr != nil {
			return nil, sleepErr
		}
		resp, err = t.base.RoundTrip(next)
	}
	return resp, err
}

func rewind(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, nil
	}
	if req.GetBody == nil {
		return nil, http.ErrBodyNotAllowed
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}
