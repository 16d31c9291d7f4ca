package pipeline

import (
	"context"
	"sync"

	"github.com/fwojciec/sitelens"
	"golang.org/x/time/rate"
)

var _ sitelens.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is the politeness delay the Processor takes before each page
// fetch. Every site in a batch gets its own token bucket, so a slow shop
// never holds up the next URL on another host.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter returns a limiter that lets rps fetches per second reach
// each site, one at a time. It backs the --rate flag; zero or less turns the
// delay off.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a fetch from domain is allowed. A cancelled batch stops
// waiting with the context error.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if d.rps <= 0 {
		return ctx.Err()
	}

	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
