package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests
type Limiter interface {
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
	String() string
}

// New returns a token bucket refilled at perSecond requests per second
// holding up to burst tokens. A non-positive rate means no limit.
func New(perSecond float64, burst int) Limiter {
	if perSecond <= 0 {
		return Unlimited{}
	}
	if burst < 1 {
		burst = 1
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

type tokenBucket struct {
	limiter *rate.Limiter
}

func (tb *tokenBucket) Wait(ctx context.Context) error {
	return tb.limiter.Wait(ctx)
}

func (tb *tokenBucket) String() string {
	return fmt.Sprintf("Limit(/s): %v, Burst: %d", tb.limiter.Limit(), tb.limiter.Burst())
}

// Unlimited never blocks
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

func (Unlimited) String() string {
	return "unlimited"
}
