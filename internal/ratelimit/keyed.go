package ratelimit

import (
	"sync"
	"time"

	"github.com/myschoolct/portal-assistant/internal/metrics"
)

const defaultCleanupPeriod = 5 * time.Minute

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name labels this limiter in metrics ("llm", "chat").
	Name string

	Burst      float64 // bucket capacity
	RefillRate float64 // tokens per second

	// DailyLimit caps requests per key over a rolling 24h window. 0 disables it.
	DailyLimit int

	// CleanupPeriod is how often idle keys are dropped. Defaults to 5 minutes.
	CleanupPeriod time.Duration

	Metrics *metrics.Metrics
}

// PerHour returns a config allowing n requests per key per hour, all of
// which may be spent at once.
func PerHour(name string, n float64) KeyedConfig {
	return KeyedConfig{
		Name:       name,
		Burst:      n,
		RefillRate: n / 3600,
	}
}

// KeyedLimiter keeps one token bucket per key (chat session, LINE chat ID)
// and drops buckets that have refilled completely.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	config  KeyedConfig
	stopCh  chan struct{}
	stopped sync.Once
}

// keyedEntry's mutex makes the bucket and daily checks one atomic step.
type keyedEntry struct {
	mu      sync.Mutex
	limiter *Limiter
	daily   *SlidingWindowCounter
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
// Call Stop when done.
//
//	limiter := NewKeyedLimiter(PerHour("llm", 30))
//	defer limiter.Stop()
//
//	if limiter.Allow(sessionID) {
//	    // call the model
//	}
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = defaultCleanupPeriod
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go kl.cleanupLoop()

	return kl
}

// Allow reports whether key may proceed and, if so, consumes one token.
// The empty key is never limited. A nil limiter allows everything.
func (kl *KeyedLimiter) Allow(key string) bool {
	if kl == nil || key == "" {
		return true
	}

	entry := kl.getOrCreateEntry(key)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.daily != nil && !entry.daily.Check() {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
		return false
	}
	if !entry.limiter.Check() {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
		return false
	}

	if entry.daily != nil {
		entry.daily.Consume()
	}
	entry.limiter.Consume()

	return true
}

func (kl *KeyedLimiter) getOrCreateEntry(key string) *keyedEntry {
	kl.mu.RLock()
	entry, exists := kl.entries[key]
	kl.mu.RUnlock()

	if exists {
		return entry
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	if entry, exists = kl.entries[key]; exists {
		return entry
	}

	entry = &keyedEntry{
		limiter: New(kl.config.Burst, kl.config.RefillRate),
		daily:   NewSlidingWindowCounter(kl.config.DailyLimit, 24*time.Hour),
	}
	kl.entries[key] = entry
	return entry
}

// GetAvailable returns the tokens left for key. Unknown keys have a full bucket.
func (kl *KeyedLimiter) GetAvailable(key string) float64 {
	kl.mu.RLock()
	entry, exists := kl.entries[key]
	kl.mu.RUnlock()

	if !exists {
		return kl.config.Burst
	}
	return entry.limiter.Available()
}

// GetDailyRemaining returns the rolling daily quota left for key, or -1
// when no daily limit is configured.
func (kl *KeyedLimiter) GetDailyRemaining(key string) int {
	if kl.config.DailyLimit <= 0 {
		return -1
	}

	kl.mu.RLock()
	entry, exists := kl.entries[key]
	kl.mu.RUnlock()

	if !exists {
		return kl.config.DailyLimit
	}
	return entry.daily.GetRemaining()
}

// GetActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) GetActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.Cleanup()
		}
	}
}

// Cleanup drops keys whose bucket is full and whose daily window is empty,
// then returns how many keys remain.
func (kl *KeyedLimiter) Cleanup() int {
	kl.mu.Lock()
	for key, entry := range kl.entries {
		entry.mu.Lock()
		idle := entry.limiter.IsFull() && (entry.daily == nil || entry.daily.IsEmpty())
		entry.mu.Unlock()
		if idle {
			delete(kl.entries, key)
		}
	}
	active := len(kl.entries)
	kl.mu.Unlock()

	kl.config.Metrics.SetRateLimiterActive(kl.config.Name, active)
	return active
}

// Stop ends the cleanup loop. Safe to call more than once.
func (kl *KeyedLimiter) Stop() {
	if kl == nil {
		return
	}
	kl.stopped.Do(func() { close(kl.stopCh) })
}
