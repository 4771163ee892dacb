package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/ratelimit"
)

// RateLimitMiddleware wraps the fixed-window store for per-action limits
// (login, refresh, contact). Keys are "{action}:{client ip}".
type RateLimitMiddleware struct {
	store ratelimit.Store
}

func NewRateLimitMiddleware(store ratelimit.Store) *RateLimitMiddleware {
	return &RateLimitMiddleware{store: store}
}

func (m *RateLimitMiddleware) Limit(action string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := m.store.Hit(action+":"+ExtractClientIP(r), limit, window)
			if !res.Allowed {
				writeRateLimited(w, res.ResetAt)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Allow consults the store without writing a response; the view handler
// uses it to skip counting instead of erroring.
func (m *RateLimitMiddleware) Allow(action string, identity string, limit int, window time.Duration) bool {
	return m.store.Hit(action+":"+identity, limit, window).Allowed
}

func writeRateLimited(w http.ResponseWriter, resetAt time.Time) {
	retryAfter := int(time.Until(resetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: "RATE_LIMITED", Message: "Too many requests"},
	})
}

// GlobalRateLimit is the blanket per-IP request throttle in front of the
// whole API, a token bucket rather than a fixed window so bursts within
// the RPM budget pass.
type GlobalRateLimit struct {
	rpm     int
	mu      sync.Mutex
	clients map[string]*globalClient
}

type globalClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewGlobalRateLimit(rpm int) *GlobalRateLimit {
	if rpm <= 0 {
		rpm = 300
	}

	return &GlobalRateLimit{rpm: rpm, clients: map[string]*globalClient{}}
}

func (g *GlobalRateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.limiterFor(ExtractClientIP(r)).Allow() {
			writeRateLimited(w, time.Now().Add(time.Minute))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *GlobalRateLimit) limiterFor(clientIP string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[clientIP]; ok {
		c.lastSeen = time.Now()
		return c.limiter
	}

	created := &globalClient{
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(g.rpm)), g.rpm),
		lastSeen: time.Now(),
	}
	g.clients[clientIP] = created
	g.gcLocked()

	return created.limiter
}

func (g *GlobalRateLimit) gcLocked() {
	if len(g.clients) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, c := range g.clients {
		if c.lastSeen.Before(cutoff) {
			delete(g.clients, ip)
		}
	}
}

func ExtractClientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
			return strings.TrimSpace(parts[0])
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}
