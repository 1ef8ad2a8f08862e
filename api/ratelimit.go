package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Credential endpoints (login, registration) allow 5 attempts per minute
// per client IP. Idle IPs are forgotten after evictAfter.
const (
	attemptInterval = 12 * time.Second
	attemptBurst    = 5
	evictAfter      = 10 * time.Minute
	retryAfter      = "60"
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// CredentialLimiter throttles credential-guessing endpoints per client IP.
// One limiter is shared across login and registration so an attacker cannot
// double the budget by alternating between them.
type CredentialLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
}

func NewCredentialLimiter() *CredentialLimiter {
	cl := &CredentialLimiter{clients: make(map[string]*clientBucket)}
	go cl.evictLoop()
	return cl
}

// Wrap applies the limit to a handler, answering 429 with a Retry-After
// hint once an IP exhausts its attempt budget.
func (cl *CredentialLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cl.allow(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "too many attempts, slow down"})
			return
		}
		next(w, r)
	}
}

func (cl *CredentialLimiter) allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	bucket, ok := cl.clients[ip]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(rate.Every(attemptInterval), attemptBurst)}
		cl.clients[ip] = bucket
	}
	bucket.lastSeen = time.Now()
	return bucket.limiter.Allow()
}

func (cl *CredentialLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cl.mu.Lock()
		for ip, bucket := range cl.clients {
			if time.Since(bucket.lastSeen) > evictAfter {
				delete(cl.clients, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// clientIP identifies the caller for rate limiting, trusting proxy headers
// first so every client behind a reverse proxy is not lumped together.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
