package publisher

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited spaces publish calls with a token bucket.
type RateLimited struct {
	next    Publisher
	limiter *rate.Limiter
}

// NewRateLimited wraps next so at most perMinute calls start per minute.
// A non-positive perMinute returns next unchanged.
func NewRateLimited(next Publisher, perMinute float64) Publisher {
	if perMinute <= 0 {
		return next
	}
	every := time.Duration(float64(time.Minute) / perMinute)
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Publish waits for a token, then delegates.
func (r *RateLimited) Publish(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Publish(ctx, req)
}
