package ratelimit

import (
	"sync"
	"time"
)

// PerChatLimiterConfig configures a PerChatLimiter instance.
type PerChatLimiterConfig struct {
	MaxTokens     float64       // Burst capacity per chat
	RefillRate    float64       // Tokens refilled per second
	CleanupPeriod time.Duration // How often inactive buckets are reaped
}

// PerChatLimiter tracks rate limits per chat. Each chat gets its own token
// bucket; buckets idle for two cleanup periods are dropped.
type PerChatLimiter struct {
	mu       sync.RWMutex
	limiters map[int64]*Limiter
	config   PerChatLimiterConfig
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPerChatLimiter creates a per-chat rate limiter and starts its cleanup
// loop. Call Stop when done.
func NewPerChatLimiter(cfg PerChatLimiterConfig) *PerChatLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	pcl := &PerChatLimiter{
		limiters: make(map[int64]*Limiter),
		config:   cfg,
		stopCh:   make(chan struct{}),
	}
	go pcl.cleanupLoop()
	return pcl
}

// Allow reports whether the chat may make another request now.
func (pcl *PerChatLimiter) Allow(chatID int64) bool {
	pcl.mu.RLock()
	limiter, ok := pcl.limiters[chatID]
	pcl.mu.RUnlock()

	if !ok {
		pcl.mu.Lock()
		limiter, ok = pcl.limiters[chatID]
		if !ok {
			limiter = NewLimiter(pcl.config.MaxTokens, pcl.config.RefillRate)
			pcl.limiters[chatID] = limiter
		}
		pcl.mu.Unlock()
	}

	return limiter.Allow()
}

// ActiveCount returns the number of tracked chats.
func (pcl *PerChatLimiter) ActiveCount() int {
	pcl.mu.RLock()
	defer pcl.mu.RUnlock()
	return len(pcl.limiters)
}

// Stop terminates the cleanup loop.
func (pcl *PerChatLimiter) Stop() {
	pcl.stopOnce.Do(func() { close(pcl.stopCh) })
}

func (pcl *PerChatLimiter) cleanupLoop() {
	ticker := time.NewTicker(pcl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-pcl.stopCh:
			return
		case <-ticker.C:
			pcl.cleanup()
		}
	}
}

func (pcl *PerChatLimiter) cleanup() {
	cutoff := time.Now().Add(-2 * pcl.config.CleanupPeriod)

	pcl.mu.Lock()
	defer pcl.mu.Unlock()
	for chatID, limiter := range pcl.limiters {
		if limiter.idleSince(cutoff) {
			delete(pcl.limiters, chatID)
		}
	}
}
