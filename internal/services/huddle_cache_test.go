package services

import (
	"errors"
	"testing"
	"time"

	"alumnihuddle/internal/models"
)

// fakeDirectory counts lookups and returns a scripted result.
type fakeDirectory struct {
	calls  int
	huddle *models.Huddle
	err    error
}

func (f *fakeDirectory) GetBySlug(slug string) (*models.Huddle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.huddle, nil
}

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func testHuddle(slug string) *models.Huddle {
	return &models.Huddle{ID: "huddle-1", Name: "Test Huddle", Slug: slug}
}

// TestHuddleCacheServesFreshEntry verifies a second lookup within the TTL
// does not touch the directory
func TestHuddleCacheServesFreshEntry(t *testing.T) {
	dir := &fakeDirectory{huddle: testHuddle("hoosiers")}
	clock := &fakeClock{t: time.Now()}
	cache := NewHuddleCache(dir, 5*time.Minute, clock.Now)

	first, err := cache.Get("hoosiers")
	if err != nil {
		t.Fatalf("First Get failed: %v", err)
	}
	if first == nil || first.Slug != "hoosiers" {
		t.Fatalf("Expected huddle hoosiers, got %+v", first)
	}

	clock.Advance(4 * time.Minute)

	second, err := cache.Get("hoosiers")
	if err != nil {
		t.Fatalf("Second Get failed: %v", err)
	}
	if second != first {
		t.Error("Expected the cached huddle instance")
	}
	if dir.calls != 1 {
		t.Errorf("Expected 1 directory call, got %d", dir.calls)
	}
}

// TestHuddleCacheExpiry verifies an expired entry is re-fetched
func TestHuddleCacheExpiry(t *testing.T) {
	dir := &fakeDirectory{huddle: testHuddle("hoosiers")}
	clock := &fakeClock{t: time.Now()}
	cache := NewHuddleCache(dir, 5*time.Minute, clock.Now)

	if _, err := cache.Get("hoosiers"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	clock.Advance(5 * time.Minute)

	if _, err := cache.Get("hoosiers"); err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if dir.calls != 2 {
		t.Errorf("Expected 2 directory calls, got %d", dir.calls)
	}
}

// TestHuddleCacheStaleFallback verifies an expired entry is served when the
// directory fails
func TestHuddleCacheStaleFallback(t *testing.T) {
	dir := &fakeDirectory{huddle: testHuddle("hoosiers")}
	clock := &fakeClock{t: time.Now()}
	cache := NewHuddleCache(dir, 5*time.Minute, clock.Now)

	if _, err := cache.Get("hoosiers"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	clock.Advance(10 * time.Minute)
	dir.err = errors.New("connection refused")

	huddle, err := cache.Get("hoosiers")
	if err != nil {
		t.Fatalf("Expected stale entry, got error: %v", err)
	}
	if huddle == nil || huddle.Slug != "hoosiers" {
		t.Fatalf("Expected stale huddle, got %+v", huddle)
	}
}

// TestHuddleCacheErrorWithoutEntry verifies the error propagates when
// nothing is cached
func TestHuddleCacheErrorWithoutEntry(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}
	cache := NewHuddleCache(dir, 5*time.Minute, nil)

	if _, err := cache.Get("hoosiers"); err == nil {
		t.Fatal("Expected error when directory fails with no cached entry")
	}
}

// TestHuddleCacheNegativeCaching verifies an unknown slug is cached as
// absent for a full TTL
func TestHuddleCacheNegativeCaching(t *testing.T) {
	dir := &fakeDirectory{huddle: nil}
	clock := &fakeClock{t: time.Now()}
	cache := NewHuddleCache(dir, 5*time.Minute, clock.Now)

	huddle, err := cache.Get("unknown")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if huddle != nil {
		t.Fatalf("Expected nil huddle for unknown slug, got %+v", huddle)
	}

	// The absence should be served from cache without a second lookup.
	if _, err := cache.Get("unknown"); err != nil {
		t.Fatalf("Second Get failed: %v", err)
	}
	if dir.calls != 1 {
		t.Errorf("Expected 1 directory call, got %d", dir.calls)
	}

	// After the TTL the slug resolves again.
	clock.Advance(5 * time.Minute)
	dir.huddle = testHuddle("unknown")

	resolved, err := cache.Get("unknown")
	if err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if resolved == nil {
		t.Fatal("Expected huddle after negative entry expired")
	}
}

// TestHuddleCacheInvalidate verifies invalidation forces a re-fetch
func TestHuddleCacheInvalidate(t *testing.T) {
	dir := &fakeDirectory{huddle: testHuddle("hoosiers")}
	cache := NewHuddleCache(dir, 5*time.Minute, nil)

	if _, err := cache.Get("hoosiers"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", cache.Len())
	}

	cache.Invalidate("hoosiers")
	if cache.Len() != 0 {
		t.Errorf("Expected 0 cached entries after invalidate, got %d", cache.Len())
	}

	if _, err := cache.Get("hoosiers"); err != nil {
		t.Fatalf("Get after invalidate failed: %v", err)
	}
	if dir.calls != 2 {
		t.Errorf("Expected 2 directory calls, got %d", dir.calls)
	}
}
