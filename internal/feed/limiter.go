package feed

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests per host.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLimiter allows perSecond requests per host. A non-positive rate disables limiting.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{limiters: map[string]*rate.Limiter{}, limit: limit, burst: burst}
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[host] = lim
	}
	return lim
}

// Wait blocks until a request to rawURL's host is allowed, then sleeps for
// extra (a robots.txt crawl delay, for instance).
func (l *Limiter) Wait(ctx context.Context, rawURL string, extra time.Duration) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if err := l.forHost(u.Host).Wait(ctx); err != nil {
		return err
	}
	if extra <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(extra):
		return nil
	}
}
