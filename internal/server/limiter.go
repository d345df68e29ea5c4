package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Fixed-window limits for websocket events, per connection.
const (
	eventWindowLen = 15 * time.Second
	eventWindowMax = 60
)

// eventWindow is a fixed-window counter: the count resets when the window
// expires. One instance lives per connection, owned by its read loop.
type eventWindow struct {
	count   int
	resetAt time.Time
}

func newEventWindow() *eventWindow {
	return &eventWindow{resetAt: time.Now().Add(eventWindowLen)}
}

func (w *eventWindow) allow() bool {
	now := time.Now()
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(eventWindowLen)
	}
	w.count++
	return w.count <= eventWindowMax
}

// IPRateLimiter throttles HTTP requests per client IP using a token
// bucket. Idle entries are dropped periodically to bound memory.
type IPRateLimiter struct {
	mu     sync.Mutex
	limits map[string]*ipEntry
	r      rate.Limit
	b      int
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter converts a max-requests-per-window policy into a token
// bucket and starts the cleanup loop.
func NewIPRateLimiter(window time.Duration, maxRequests int) *IPRateLimiter {
	l := &IPRateLimiter{
		limits: make(map[string]*ipEntry),
		r:      rate.Limit(float64(maxRequests) / window.Seconds()),
		b:      maxRequests,
	}
	go l.cleanup()
	return l
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.limits[ip]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.limits[ip] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

func (l *IPRateLimiter) cleanup() {
	for range time.Tick(3 * time.Minute) {
		l.mu.Lock()
		for ip, e := range l.limits {
			if time.Since(e.lastSeen) > 10*time.Minute {
				delete(l.limits, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware rejects over-limit requests with 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.allow(ip) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests, please try again later."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
