// Package transport paces and guards HTTP calls to the YouTube Data API.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ytclean/internal/logging"
	"ytclean/internal/retry"
)

// MaxRetryAfter caps how long a Retry-After header can hold requests back.
const MaxRetryAfter = 5 * time.Minute

// defaultRetryAfter applies to a 429 without a usable Retry-After header.
const defaultRetryAfter = 60 * time.Second

// Options configures a Transport.
type Options struct {
	// RequestsPerSecond limits outgoing requests (0 = unlimited).
	RequestsPerSecond float64
	FailureThreshold  int
	RecoveryTimeout   time.Duration
	Logger            *slog.Logger
}

// Transport is an http.RoundTripper that rate limits requests, honours
// Retry-After on 429 responses and holds requests back while the upstream
// keeps failing.
type Transport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
	breaker *Breaker
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time

	mu           sync.Mutex
	blockedUntil time.Time
}

// New wraps base, or http.DefaultTransport when base is nil.
func New(base http.RoundTripper, opts Options) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	t := &Transport{
		base:    base,
		breaker: NewBreaker(opts.FailureThreshold, opts.RecoveryTimeout),
		logger:  logger.With("component", "transport"),
		sleep:   retry.Sleep,
		now:     time.Now,
	}
	if opts.RequestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return t
}

// Breaker exposes the circuit breaker.
func (t *Transport) Breaker() *Breaker { return t.breaker }

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if wait := t.retryAfterWait(); wait > 0 {
		t.logger.Warn("rate limited, holding requests", "wait", wait)
		if err := t.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	for {
		wait := t.breaker.Allow()
		if wait == 0 {
			break
		}
		t.logger.Warn("circuit open, holding requests", "wait", wait)
		if err := t.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			t.breaker.Abandon()
			return nil, err
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		if ctx.Err() != nil {
			t.breaker.Abandon()
		} else {
			t.breaker.RecordFailure()
		}
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		t.breaker.RecordFailure()
		t.block(retryAfter(resp.Header, t.now()))
	case resp.StatusCode >= 500:
		t.breaker.RecordFailure()
	default:
		t.breaker.RecordSuccess()
	}
	return resp, nil
}

func (t *Transport) retryAfterWait() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blockedUntil.Sub(t.now())
}

func (t *Transport) block(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	until := t.now().Add(d)
	if until.After(t.blockedUntil) {
		t.blockedUntil = until
	}
}

// retryAfter reads Retry-After as seconds or an HTTP date, capped at
// MaxRetryAfter.
func retryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return defaultRetryAfter
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = at.Sub(now)
	} else {
		return defaultRetryAfter
	}
	if d <= 0 {
		return 0
	}
	return min(d, MaxRetryAfter)
}
