package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowCounter approximates a rolling window with two fixed windows:
// the previous window's count is weighted by how much of it still overlaps.
//
//	effective = current + previous × (remaining share of the current window)
//
// A session that made 80 calls yesterday and is 30 minutes into today's
// 24h window counts as current + 80 × 0.979.
type SlidingWindowCounter struct {
	mu              sync.Mutex
	currCount       int
	prevCount       int
	currWindowStart time.Time
	windowDuration  time.Duration
	maxRequests     int
}

// NewSlidingWindowCounter returns nil (no limit) when maxRequests <= 0.
// All methods treat a nil counter as unlimited.
func NewSlidingWindowCounter(maxRequests int, windowDuration time.Duration) *SlidingWindowCounter {
	if maxRequests <= 0 {
		return nil
	}
	return &SlidingWindowCounter{
		currWindowStart: time.Now(),
		windowDuration:  windowDuration,
		maxRequests:     maxRequests,
	}
}

// Allow consumes one request if the window has room.
func (swc *SlidingWindowCounter) Allow() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	if swc.weighted() >= float64(swc.maxRequests) {
		return false
	}
	swc.currCount++
	return true
}

// Check reports whether one more request fits without consuming it.
// Pair with Consume under an outer lock.
func (swc *SlidingWindowCounter) Check() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	return swc.weighted() < float64(swc.maxRequests)
}

// Consume records one request if it still fits.
func (swc *SlidingWindowCounter) Consume() {
	if swc == nil {
		return
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	if swc.weighted() < float64(swc.maxRequests) {
		swc.currCount++
	}
}

// GetRemaining returns the approximate quota left, or -1 when unlimited.
func (swc *SlidingWindowCounter) GetRemaining() int {
	if swc == nil {
		return -1
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	remaining := float64(swc.maxRequests) - swc.weighted()
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// IsEmpty reports whether no request is counted in either window.
func (swc *SlidingWindowCounter) IsEmpty() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.rotate()
	return swc.currCount == 0 && swc.prevCount == 0
}

// rotate advances the window. mu must be held.
func (swc *SlidingWindowCounter) rotate() {
	elapsed := time.Since(swc.currWindowStart)
	if elapsed < swc.windowDuration {
		return
	}

	passed := int(elapsed / swc.windowDuration)
	if passed == 1 {
		swc.prevCount = swc.currCount
	} else {
		// the previous window is older than one full window
		swc.prevCount = 0
	}
	swc.currCount = 0
	swc.currWindowStart = swc.currWindowStart.Add(time.Duration(passed) * swc.windowDuration)
}

// weighted returns the effective count. mu must be held.
func (swc *SlidingWindowCounter) weighted() float64 {
	elapsed := time.Since(swc.currWindowStart)
	overlap := float64(swc.windowDuration-elapsed) / float64(swc.windowDuration)
	overlap = min(max(overlap, 0), 1)
	return float64(swc.currCount) + float64(swc.prevCount)*overlap
}
