package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// visitorTTL is how long an idle client keeps its bucket.
	visitorTTL = 3 * time.Minute

	// pruneInterval bounds how often the visitor map is swept.
	pruneInterval = time.Minute
)

// ipLimiter applies a per-client token bucket. This is transport
// back-pressure only; the per-session question limit is enforced by the
// conversation pipeline itself.
type ipLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	lastPrune  time.Time
	limit      rate.Limit
	burst      int
	trustProxy bool
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(perMinute int, trustProxy bool) *ipLimiter {
	return &ipLimiter{
		visitors:   make(map[string]*visitor),
		lastPrune:  time.Now(),
		limit:      rate.Limit(float64(perMinute) / 60.0),
		burst:      perMinute,
		trustProxy: trustProxy,
	}
}

// allow reports whether a request from addr may proceed.
func (l *ipLimiter) allow(addr string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > pruneInterval {
		for ip, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, ip)
			}
		}
		l.lastPrune = now
	}

	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// clientIP resolves the client address, honoring proxy headers only when
// the server is configured to trust them.
func (l *ipLimiter) clientIP(r *http.Request) string {
	if l.trustProxy {
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			return ip
		}
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if first, _, found := strings.Cut(fwd, ","); found || first != "" {
				return strings.TrimSpace(first)
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// middleware rejects over-limit clients with 429.
func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(l.clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
