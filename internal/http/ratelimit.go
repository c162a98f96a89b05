package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	rateLimitPerWindow = 60
	rateLimitWindow    = time.Minute
)

// rateLimiter caps write-path requests per client IP using a fixed
// window counter. Entries idle past staleAfter are swept periodically.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientWindow
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientWindow struct {
	lastSeen time.Time
	count    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientWindow),
		stopCleanup: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(10 * time.Minute)
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) sweep(staleAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// allow reports whether the client may proceed. Exceeding the window
// limit returns false and bumps the rate-limit metric.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.lastSeen) > rateLimitWindow {
		rl.clients[clientIP] = &clientWindow{lastSeen: now, count: 1}
		return true
	}

	c.count++
	c.lastSeen = now
	if c.count > rateLimitPerWindow {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
