package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"docmill/internal/models"
)

// KeyFunc derives the client identity used as the limiter key for a request.
type KeyFunc func(r *http.Request) string

// Middleware returns HTTP middleware that enforces a rate limit. The code and
// message distinguish the global limiter from the heavy-route limiter in the
// 429 response body. Denials carry a Retry-After header computed from the
// remaining window.
func Middleware(limiter Limiter, code, message string, clientKey KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, info := limiter.Allow(key)

			// Always set rate limit headers
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetAt.Unix()))

			if !allowed {
				retryAfterSecs := int(info.RetryAfter.Seconds())
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSecs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				errorResp := models.NewErrorResponse(message, code)
				json.NewEncoder(w).Encode(errorResp)

				slog.Warn("Rate limit exceeded",
					"key", key,
					"code", code,
					"limit", info.Limit,
					"retry_after", retryAfterSecs,
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey returns a KeyFunc that derives the client identity from the
// request's originating network address. When trustedHops is positive, the
// identity is taken from X-Forwarded-For, counting that many proxy hops back
// from the end of the list. With zero hops the direct peer address is used
// and forwarding headers are ignored, so clients cannot spoof their identity.
func ClientKey(trustedHops int) KeyFunc {
	return func(r *http.Request) string {
		if trustedHops > 0 {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				hops := strings.Split(xff, ",")
				idx := len(hops) - trustedHops
				if idx < 0 {
					idx = 0
				}
				if ip := strings.TrimSpace(hops[idx]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
}
