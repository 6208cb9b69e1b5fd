// Defines rate limit tiers and routing rules.

package ratelimit

import "net/http"

// Tier is a named rate limit applied per client IP.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Config holds the limiters of the read and write tiers. A nil tier is
// unlimited.
type Config struct {
	Read  *Tier
	Write *Tier
}

// NewConfig creates the tiers from per-minute limits. A limit of 0 disables
// the tier. Bursts are a sixth of the per-minute limit.
func NewConfig(readPerMin, writePerMin int) *Config {
	return &Config{
		Read:  newTier("read", readPerMin),
		Write: newTier("write", writePerMin),
	}
}

func newTier(name string, perMin int) *Tier {
	if perMin <= 0 {
		return nil
	}
	return &Tier{Name: name, Limiter: NewLimiter(perMin, max(perMin/6, 1))}
}

// Match returns the tier for a request, or nil when it is not rate limited.
func (c *Config) Match(method, path string) *Tier {
	if c == nil || path == "/api/health" {
		return nil
	}
	switch method {
	case http.MethodGet, http.MethodHead:
		return c.Read
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return c.Write
	default:
		return nil
	}
}

// Close stops all limiter goroutines.
func (c *Config) Close() {
	for _, t := range []*Tier{c.Read, c.Write} {
		if t != nil {
			t.Limiter.Close()
		}
	}
}
