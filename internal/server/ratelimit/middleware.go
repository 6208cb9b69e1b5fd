// Provides response header helpers for rate limiting.

package ratelimit

import (
	"net/http"
	"strconv"
)

// WriteHeaders writes rate limit headers to the response.
// Headers are written on all responses (both success and 429).
func WriteHeaders(w http.ResponseWriter, result Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		h.Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
	}
}

// BuildKey creates a bucket key for a client in a tier.
func BuildKey(clientIP, tierName string) string {
	return "ip:" + clientIP + ":" + tierName
}

// Check consumes a token of tier for clientIP and writes the rate limit
// headers. It returns false when the request must be rejected; the caller
// writes the error body.
func Check(w http.ResponseWriter, tier *Tier, clientIP string) (Result, bool) {
	if tier == nil {
		return Result{Allowed: true}, true
	}
	result := tier.Limiter.Allow(BuildKey(clientIP, tier.Name))
	WriteHeaders(w, result)
	return result, result.Allowed
}
