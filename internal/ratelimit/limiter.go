// Package ratelimit provides per-client rate limiting for HTTP requests using
// a fixed-window counter. The service runs two independently configured
// instances: a loose global limiter applied to every request and a strict
// limiter applied only to heavy document-processing routes. The two instances
// never share state. The package includes HTTP middleware that sets standard
// rate limit response headers.
package ratelimit

import "time"

// Limiter defines the rate limiting contract. Implementations must be safe for
// concurrent use.
type Limiter interface {
	// Allow checks whether a request identified by key should be allowed.
	// Returns whether the request is allowed and rate information for
	// populating response headers.
	Allow(key string) (allowed bool, info Info)
}

// Info contains rate limit state for populating response headers.
type Info struct {
	Limit      int           // Maximum requests per window
	Remaining  int           // Requests left in the current window
	ResetAt    time.Time     // When the current window ends
	RetryAfter time.Duration // How long to wait (meaningful only when denied)
}
