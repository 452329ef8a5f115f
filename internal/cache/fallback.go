// Package cache implements the two-tier read/write-through cache: Redis as the
// primary tier with an in-process expiring map as fallback and mirror.
package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

// shardCount is a power of two so the shard pick is a cheap mask.
const shardCount = 32

type entry struct {
	value     string
	expiresAt time.Time
}

// Fallback is the in-process tier: a lock-striped expiring map. Expired
// entries are removed lazily, on the next lookup of their key or during a
// Sweep. All methods are safe for concurrent use; striping keeps contention
// per-shard rather than global.
type Fallback struct {
	now    func() time.Time
	shards [shardCount]shard
}

type shard struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewFallback creates an empty fallback cache. A nil now uses the real clock.
func NewFallback(now func() time.Time) *Fallback {
	if now == nil {
		now = time.Now
	}

	f := &Fallback{now: now}
	for i := range f.shards {
		f.shards[i].entries = make(map[string]entry)
	}

	return f
}

// Get returns the live value for key, evicting it when expired.
func (f *Fallback) Get(key string) (string, bool) {
	s := f.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}

	if !f.now().Before(e.expiresAt) {
		delete(s.entries, key)

		return "", false
	}

	return e.value, true
}

// Set stores value under key, expiring ttl from now.
func (f *Fallback) Set(key, value string, ttl time.Duration) {
	s := f.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: f.now().Add(ttl)}
}

// Delete removes key.
func (f *Fallback) Delete(key string) {
	s := f.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Update atomically reads, transforms, and stores the entry for key under the
// shard lock, so concurrent read-modify-writes on the same key cannot lose
// updates. fn receives the current live value (ok reports whether one exists)
// and returns the value to store. A fresh entry expires ttl from now; a live
// entry keeps its deadline.
func (f *Fallback) Update(key string, ttl time.Duration, fn func(current string, ok bool) string) string {
	s := f.shard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := f.now()

	e, ok := s.entries[key]
	if ok && !now.Before(e.expiresAt) {
		ok = false
	}

	expiresAt := e.expiresAt
	if !ok {
		e.value = ""
		expiresAt = now.Add(ttl)
	}

	next := fn(e.value, ok)
	s.entries[key] = entry{value: next, expiresAt: expiresAt}

	return next
}

// Sweep removes every expired entry across all shards.
func (f *Fallback) Sweep() {
	now := f.now()

	for i := range f.shards {
		s := &f.shards[i]

		s.mu.Lock()

		for key, e := range s.entries {
			if !now.Before(e.expiresAt) {
				delete(s.entries, key)
			}
		}

		s.mu.Unlock()
	}
}

// Len reports the number of stored entries, expired or not.
func (f *Fallback) Len() int {
	var n int

	for i := range f.shards {
		s := &f.shards[i]

		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}

	return n
}

func (f *Fallback) shard(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	return &f.shards[h.Sum32()&(shardCount-1)]
}
