// Package ratelimit throttles outbound archive requests.
//
// A single Limiter is shared by every worker of a batch, so the configured
// requests-per-minute budget applies to the whole run:
//
//	limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
