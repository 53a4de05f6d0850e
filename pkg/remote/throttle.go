package remote

import (
	"context"
	"io"

	"inatfetch/pkg/ratelimit"
)

type throttled struct {
	getter  Getter
	limiter ratelimit.Limiter
}

// Throttle returns a Getter that waits on limiter before every request
func Throttle(g Getter, limiter ratelimit.Limiter) Getter {
	if _, ok := limiter.(ratelimit.Unlimited); ok || limiter == nil {
		return g
	}
	return &throttled{getter: g, limiter: limiter}
}

func (t *throttled) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.getter.Get(ctx, uri)
}
