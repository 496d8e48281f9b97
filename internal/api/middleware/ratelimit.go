package middleware

import (
	"net"
	"sync"

	"github.com/driftwood-collective/server/internal/api"
	"github.com/driftwood-collective/server/internal/api/httperr"
	"github.com/driftwood-collective/server/internal/config"
	"golang.org/x/time/rate"
)

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (s *limiterStore) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = limiter
	}
	return limiter
}

// RateLimit throttles per client IP. Applied per-route (login) rather
// than globally so credential stuffing is slowed without penalizing
// normal browsing.
func RateLimit(cfg config.RateLimitConfig) api.Middleware {
	store := &limiterStore{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(cfg.LoginPerMinute) / 60.0),
		burst:    cfg.Burst,
	}
	return func(c *api.Context, next api.Next) error {
		if cfg.LoginPerMinute <= 0 {
			return next()
		}
		limiter := store.limiter(clientIP(c))
		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			return httperr.TooManyRequests(delay)
		}
		return next()
	}
}

func clientIP(c *api.Context) string {
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
