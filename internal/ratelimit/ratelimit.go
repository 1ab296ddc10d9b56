package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/yaadfeed/yaadfeed/internal/logger"
)

// AIRateLimiter caps provider calls per run window so a misbehaving batch
// cannot burn the whole API budget.
type AIRateLimiter struct {
	mu          sync.Mutex
	textCount   int
	imageCount  int
	totalCount  int
	maxText     int
	maxImages   int
	resetTime   time.Time
	cacheHits   int
	cacheMisses int
}

// NewAIRateLimiter creates a limiter with per-kind caps (0 = unlimited).
func NewAIRateLimiter(maxText, maxImages int) *AIRateLimiter {
	return &AIRateLimiter{
		maxText:   maxText,
		maxImages: maxImages,
		resetTime: time.Now().Add(24 * time.Hour), // Reset daily
	}
}

// CanUseText checks if we can make a text-generation request.
func (rl *AIRateLimiter) CanUseText() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxText > 0 && rl.textCount >= rl.maxText {
		logger.Warn("text generation rate limit reached", "used", rl.textCount, "limit", rl.maxText)
		return false
	}
	return true
}

// CanUseImages checks if we can make an image-generation request.
func (rl *AIRateLimiter) CanUseImages() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxImages > 0 && rl.imageCount >= rl.maxImages {
		logger.Warn("image generation rate limit reached", "used", rl.imageCount, "limit", rl.maxImages)
		return false
	}
	return true
}

// UseText increments the text counter.
func (rl *AIRateLimiter) UseText() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxText > 0 && rl.textCount >= rl.maxText {
		return fmt.Errorf("text generation rate limit exceeded")
	}

	rl.textCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// UseImage increments the image counter.
func (rl *AIRateLimiter) UseImage() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxImages > 0 && rl.imageCount >= rl.maxImages {
		return fmt.Errorf("image generation rate limit exceeded")
	}

	rl.imageCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// RecordCacheHit records a request served from the asset cache instead of
// the provider.
func (rl *AIRateLimiter) RecordCacheHit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cacheHits++
}

// GetStats returns current limiter statistics.
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	hitRate := 0.0
	if total := rl.cacheHits + rl.cacheMisses; total > 0 {
		hitRate = float64(rl.cacheHits) / float64(total) * 100
	}

	return map[string]interface{}{
		"text_used":      rl.textCount,
		"text_limit":     rl.maxText,
		"images_used":    rl.imageCount,
		"images_limit":   rl.maxImages,
		"total_used":     rl.totalCount,
		"cache_hits":     rl.cacheHits,
		"cache_misses":   rl.cacheMisses,
		"cache_hit_rate": hitRate,
		"reset_time":     rl.resetTime,
	}
}

// checkReset resets counters if the reset window has passed.
func (rl *AIRateLimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		logger.Info("resetting AI rate limiter counters")
		rl.textCount = 0
		rl.imageCount = 0
		rl.totalCount = 0
		rl.cacheHits = 0
		rl.cacheMisses = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
