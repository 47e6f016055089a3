package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Idle buckets are dropped after this long; the two voice endpoints are
// slow enough that anything older is a gone client.
const bucketIdleAfter = 3 * time.Minute

type bucket struct {
	tokens  float64
	updated time.Time
}

// RateLimiter applies a per-client-IP token bucket. The vendor APIs bill
// per call, so a runaway client script gets stopped here before it spends
// the tester's quota.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     float64
	burst   float64
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rps:     rps,
		burst:   float64(burst),
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.burst, updated: now}
		rl.buckets[ip] = b
	}

	b.tokens += now.Sub(b.updated).Seconds() * rl.rps
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.updated = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) evictLoop() {
	for {
		time.Sleep(time.Minute)
		now := time.Now()
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if now.Sub(b.updated) > bucketIdleAfter {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
