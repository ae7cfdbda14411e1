package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-library-cms/internal/application/ratelimit"
	"golang.org/x/time/rate"
)

type windowLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Remaining(ctx context.Context, key string) (int, error)
	Window() time.Duration
}

// RateLimit counts every request against the caller's identity key: the
// token's username when authenticated, else the source address. A counter
// store failure lets the request through.
func RateLimit(l windowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := identityKey(r)
			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				slog.Warn("rate limiter unavailable, allowing request", "key", key, "err", err)
			}
			remaining, err := l.Remaining(r.Context(), key)
			if err != nil {
				slog.Warn("rate limiter remaining failed", "key", key, "err", err)
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(l.Window()/time.Second)))
				WriteError(w, r, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityKey(r *http.Request) string {
	if c, ok := ClaimsFromContext(r.Context()); ok && c.Username != "" {
		return ratelimit.UserKey(c.Username)
	}
	return ratelimit.IPKey(realIP(r))
}

// realIP prefers the first X-Forwarded-For entry, then X-Real-Ip, then the
// connection's remote host.
func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPThrottle is an optional per-IP token bucket guarding the login endpoints
// against bursts that the per-minute window would still admit. It runs ahead
// of RateLimit, so a throttled request does not consume window budget. A zero
// rate disables it.
type IPThrottle struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	r       rate.Limit
	burst   int
	window  windowLimiter
}

// NewIPThrottle allows r requests/second per IP with the given burst. Its 429
// carries the same Retry-After and X-RateLimit-Remaining as the window
// limiter l. Stale buckets are swept until ctx is cancelled.
func NewIPThrottle(ctx context.Context, r rate.Limit, burst int, l windowLimiter) *IPThrottle {
	t := &IPThrottle{buckets: make(map[string]*ipBucket), r: r, burst: burst, window: l}
	if t.Enabled() {
		go t.sweep(ctx, 5*time.Minute, 10*time.Minute)
	}
	return t
}

func (t *IPThrottle) Enabled() bool { return t.r > 0 && t.burst > 0 }

func (t *IPThrottle) get(ip string, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.buckets[ip]; ok {
		b.lastSeen = now
		return b.limiter
	}
	l := rate.NewLimiter(t.r, t.burst)
	t.buckets[ip] = &ipBucket{limiter: l, lastSeen: now}
	return l
}

func (t *IPThrottle) sweep(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.evictIdle(now, idle)
		}
	}
}

func (t *IPThrottle) evictIdle(now time.Time, idle time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ip, b := range t.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(t.buckets, ip)
		}
	}
}

func (t *IPThrottle) Limit(next http.Handler) http.Handler {
	if !t.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.get(realIP(r), time.Now()).Allow() {
			next.ServeHTTP(w, r)
			return
		}
		key := identityKey(r)
		remaining, err := t.window.Remaining(r.Context(), key)
		if err != nil {
			slog.Warn("rate limiter remaining failed", "key", key, "err", err)
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("Retry-After", strconv.Itoa(int(t.window.Window()/time.Second)))
		WriteError(w, r, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many attempts, slow down")
	})
}
