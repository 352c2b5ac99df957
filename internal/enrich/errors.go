package enrich

import "errors"

// RateLimitedError signals an HTTP 429 response from the remote provider,
// distinct from other transport/parse failures so fetchWithRetry can apply
// the fixed 10-second wait only to this case.
type RateLimitedError struct{}

func (RateLimitedError) Error() string { return "remote provider rate limited the request" }

// IsRateLimited reports whether err (or something it wraps) is a
// RateLimitedError.
func IsRateLimited(err error) bool {
	var rl RateLimitedError
	return errors.As(err, &rl)
}
