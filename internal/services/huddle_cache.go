package services

import (
	"log"
	"sync"
	"time"

	"alumnihuddle/internal/models"
)

// HuddleDirectory is the lookup surface the cache sits in front of.
type HuddleDirectory interface {
	GetBySlug(slug string) (*models.Huddle, error)
}

// HuddleCache is a TTL cache over huddle-by-slug resolution. It is the only
// shared mutable state on the request path, so every request goes through
// the one RWMutex here.
//
// Policy:
//   - A fresh entry is served without touching the directory.
//   - A miss or expired entry triggers a directory lookup; the result
//     overwrites the entry, including negative results (absence is cached
//     with the same TTL, bounding repeated-miss load - and meaning a newly
//     created huddle can stay unresolvable for up to one TTL).
//   - When the lookup fails and any entry exists - fresh or expired - the
//     cached value is served and the error swallowed: stale tenant identity
//     beats failing the request during a store outage. With no entry at all
//     the error propagates.
//
// Two concurrent misses for the same slug may both hit the directory; the
// entries are idempotent derivations of the same row, so last write wins.
type HuddleCache struct {
	directory HuddleDirectory
	ttl       time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	entries map[string]huddleCacheEntry
}

type huddleCacheEntry struct {
	huddle   *models.Huddle // nil records a cached negative result
	cachedAt time.Time
}

// NewHuddleCache creates a cache over the given directory. The clock is
// injected so expiry is testable; pass nil for time.Now.
func NewHuddleCache(directory HuddleDirectory, ttl time.Duration, now func() time.Time) *HuddleCache {
	if now == nil {
		now = time.Now
	}
	return &HuddleCache{
		directory: directory,
		ttl:       ttl,
		now:       now,
		entries:   make(map[string]huddleCacheEntry),
	}
}

// Get resolves a slug to its huddle (or nil for a known absence). It only
// returns an error when the directory fails and nothing is cached.
func (c *HuddleCache) Get(slug string) (*models.Huddle, error) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[slug]
	c.mu.RUnlock()

	if ok && now.Sub(entry.cachedAt) < c.ttl {
		recordHuddleCacheLookup("hit")
		return entry.huddle, nil
	}

	huddle, err := c.directory.GetBySlug(slug)
	if err != nil {
		if ok {
			log.Printf("⚠️  [HUDDLE-CACHE] Store error, serving stale entry for %q: %v", slug, err)
			recordHuddleCacheLookup("stale")
			return entry.huddle, nil
		}
		recordHuddleCacheLookup("error")
		return nil, err
	}

	c.mu.Lock()
	c.entries[slug] = huddleCacheEntry{huddle: huddle, cachedAt: now}
	c.mu.Unlock()

	recordHuddleCacheLookup("miss")
	return huddle, nil
}

// Invalidate drops the entry for a slug so the next Get hits the directory.
// Driven by the huddle:invalidate Redis channel when the admin app edits a
// huddle.
func (c *HuddleCache) Invalidate(slug string) {
	c.mu.Lock()
	delete(c.entries, slug)
	c.mu.Unlock()
}

// Len reports the number of cached entries, for health reporting.
func (c *HuddleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
