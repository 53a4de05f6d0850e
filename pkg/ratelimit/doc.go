// Package ratelimit paces requests to the remote object store.
//
// The open-data bucket is public and does not throttle anonymous readers
// aggressively, so limiting is off unless remote.requests_per_second is set.
//
//	limiter := ratelimit.New(5, 1)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
