// Package retry provides bounded retry with pluggable backoff for transient
// transport failures, plus the context-aware Wait used for the archive's
// preparation delay.
//
//	body, err := retry.DoWithResult(ctx, func(ctx context.Context) ([]byte, error) {
//	    return fetchOnce(ctx, url)
//	}, retry.FromSettings(cfg.Retry, log))
//
// Only errors classified as retryable by pkg/errors (network, rate limit,
// server errors) are retried. Context cancellation stops the loop at once.
package retry
