package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/lighthouse/internal/config"
)

// BuildRateLimiter caps how many builds one IP may start per window. Going
// over starts a cooldown that doubles on each repeat, up to a maximum.
type BuildRateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*buildInfo
	maxBuilds   int
	window      time.Duration
	cooldown    time.Duration
	maxCooldown time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type buildInfo struct {
	windowStart   time.Time
	builds        int
	lockedUntil   time.Time
	cooldownCount int // times the limit was hit, for backoff
}

// NewBuildRateLimiter creates a limiter and starts its cleanup loop.
func NewBuildRateLimiter(cfg config.RateLimitConfig) *BuildRateLimiter {
	rl := &BuildRateLimiter{
		clients:     make(map[string]*buildInfo),
		maxBuilds:   cfg.MaxBuilds,
		window:      time.Duration(cfg.WindowSeconds) * time.Second,
		cooldown:    time.Duration(cfg.CooldownSeconds) * time.Second,
		maxCooldown: time.Duration(cfg.MaxCooldownSeconds) * time.Second,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	if rl.maxBuilds <= 0 {
		rl.maxBuilds = 10
	}
	if rl.window <= 0 {
		rl.window = time.Minute
	}
	if rl.cooldown <= 0 {
		rl.cooldown = 15 * time.Second
	}
	if rl.maxCooldown < rl.cooldown {
		rl.maxCooldown = rl.cooldown
	}

	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Stop stops the cleanup goroutine.
func (rl *BuildRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow records a build attempt for ip. It returns false and the remaining
// wait when ip is cooling down or has just used up its window.
func (rl *BuildRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.clients[ip]
	if !exists {
		info = &buildInfo{windowStart: now}
		rl.clients[ip] = info
	}

	if now.Before(info.lockedUntil) {
		return false, info.lockedUntil.Sub(now)
	}
	if now.Sub(info.windowStart) >= rl.window {
		info.windowStart = now
		info.builds = 0
	}

	if info.builds >= rl.maxBuilds {
		info.cooldownCount++
		wait := rl.cooldown
		for i := 1; i < info.cooldownCount && wait < rl.maxCooldown; i++ {
			wait *= 2
		}
		if wait > rl.maxCooldown {
			wait = rl.maxCooldown
		}
		info.lockedUntil = now.Add(wait)
		info.windowStart = info.lockedUntil
		info.builds = 0
		return false, wait
	}

	info.builds++
	return true, 0
}

// Builds returns the builds counted in ip's current window.
func (rl *BuildRateLimiter) Builds(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if info, exists := rl.clients[ip]; exists {
		return info.builds
	}
	return 0
}

func (rl *BuildRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops clients whose window and cooldown have both expired.
func (rl *BuildRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, info := range rl.clients {
		if now.After(info.lockedUntil) && now.Sub(info.windowStart) >= rl.window {
			delete(rl.clients, ip)
		}
	}
}
