package profile

import (
	"context"
	"sync"
	"time"
)

// Cache stores built interest profiles keyed by user ID with a TTL.
// Implementations must support concurrent readers without blocking and
// replace entries atomically; a stale read during a concurrent rebuild is
// an acceptable outcome. Cache failures are never fatal: implementations
// log and behave as a miss.
type Cache interface {
	// Get returns the cached profile and true on a fresh hit.
	Get(ctx context.Context, userID string) (*InterestProfile, bool)

	// Set stores the profile with the given TTL, replacing any entry.
	Set(ctx context.Context, userID string, p *InterestProfile, ttl time.Duration)

	// Delete removes the entry for the user, if any.
	Delete(ctx context.Context, userID string)
}

// memoryEntry pairs a profile with its expiry.
type memoryEntry struct {
	profile   *InterestProfile
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Entries are whole-value replaced
// under a write lock, so readers always observe a consistent profile.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates an empty in-process profile cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get returns the cached profile if present and unexpired.
func (c *MemoryCache) Get(_ context.Context, userID string) (*InterestProfile, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.profile, true
}

// Set stores the profile with the given TTL.
func (c *MemoryCache) Set(_ context.Context, userID string, p *InterestProfile, ttl time.Duration) {
	if p == nil || ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[userID] = memoryEntry{profile: p, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes the cached profile for the user.
func (c *MemoryCache) Delete(_ context.Context, userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// Purge drops expired entries. Intended to be called periodically from a
// background goroutine; correctness does not depend on it since Get checks
// expiry.
func (c *MemoryCache) Purge() {
	now := time.Now()
	c.mu.Lock()
	for userID, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, userID)
		}
	}
	c.mu.Unlock()
}
