package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerIP keeps one token bucket per client address.
type PerIP struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

func NewPerIP(perSecond float64, burst int) *PerIP {
	return &PerIP{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

func (p *PerIP) Allow(ip string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	v, ok := p.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.visitors[ip] = v
	}
	v.lastSeen = now
	if len(p.visitors) > 1024 {
		p.evict(now)
	}
	return v.limiter.AllowN(now, 1)
}

func (p *PerIP) evict(now time.Time) {
	for ip, v := range p.visitors {
		if now.Sub(v.lastSeen) > p.idle {
			delete(p.visitors, ip)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (p *PerIP) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		if !p.Allow(ip) {
			logging.FromContext(c.Request().Context()).Warn("rate_limited", "remote_ip", ip)
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		}
		return next(c)
	}
}
