// Package netutil classifies failures of Telegram API calls and paces retries.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Failure kinds reported by Kind.
const (
	KindTimeout = "timeout"
	KindDNS     = "dns"
	KindDial    = "dial"
	KindReset   = "reset"
	KindTLS     = "tls"
	KindFlood   = "flood"
	KindHTTP5xx = "http_5xx"
	KindHTTP4xx = "http_4xx"
	KindUnknown = "unknown"
)

// Kind names the class of err for logs. It returns "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if _, ok := RetryAfter(err); ok {
		return KindFlood
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return KindTimeout
		}
		return KindDNS
	}
	if isTimeout(err) {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindDial
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return KindReset
	}
	var alert tls.AlertError
	if errors.As(err, &alert) {
		return KindTLS
	}
	switch code := StatusCode(err); {
	case code >= 500:
		return KindHTTP5xx
	case code >= 400:
		return KindHTTP4xx
	}
	return KindUnknown
}

// ShouldRetry reports whether repeating the call may succeed: timeouts,
// refused or reset connections, flood control and server-side errors.
func ShouldRetry(err error) bool {
	switch Kind(err) {
	case KindTimeout, KindDial, KindReset, KindFlood, KindHTTP5xx:
		return true
	}
	return false
}

// RetryAfter extracts the wait Telegram requested with a 429 response.
func RetryAfter(err error) (time.Duration, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return time.Duration(flood.RetryAfter) * time.Second, true
	}
	return 0, false
}

// Backoff is the delay before retry number attempt (1-based): linear in
// attempt, or the server-requested wait when err carries one.
func Backoff(err error, base time.Duration, attempt int) time.Duration {
	if d, ok := RetryAfter(err); ok && d > 0 {
		return d
	}
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(attempt)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StatusCode returns the HTTP status carried by a Telegram API error, or 0.
func StatusCode(err error) int {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}
	// Errors formatted by telebot end with "(code)".
	msg := err.Error()
	open, end := strings.LastIndexByte(msg, '('), strings.LastIndexByte(msg, ')')
	if open >= 0 && end > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : end])); convErr == nil {
			return code
		}
	}
	return 0
}

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Redact strips bot tokens from request URLs quoted in err.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
