package core

import "errors"

// Error taxonomy for the review pipeline. Auth and NotFound abort the whole
// run; RateLimit and Transport are retried with backoff and become per-file
// failures once retries are exhausted; Parse is an immediate per-file failure.
var (
	ErrAuth      = errors.New("authentication failed")
	ErrNotFound  = errors.New("pull request or repository not found")
	ErrRateLimit = errors.New("rate limited by backend")
	ErrTransport = errors.New("transport failure")
	ErrParse     = errors.New("malformed model response")
)

// IsRetryable reports whether err is transient and worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTransport)
}

// IsFatal reports whether err must abort the whole run rather than a single
// file's review.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrNotFound)
}
