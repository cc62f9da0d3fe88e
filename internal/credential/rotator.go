// Package credential rotates through a pool of API keys when the
// text-generation service signals a rate limit.
package credential

import (
	"strings"
	"sync"
)

// Rotator holds an ordered key pool and the index of the key in use.
// The index only moves forward; Reset rewinds it for a new run.
type Rotator struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

// NewRotator builds a pool from keys, dropping blank entries.
func NewRotator(keys []string) *Rotator {
	pool := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			pool = append(pool, k)
		}
	}
	return &Rotator{keys: pool}
}

// Current returns the key in use, or "" for an empty pool.
func (r *Rotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[r.idx]
}

// Rotate advances to the next key. It returns false when the pool is
// exhausted, leaving the current key in place.
func (r *Rotator) Rotate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx+1 >= len(r.keys) {
		return false
	}
	r.idx++
	return true
}

// Exhausted reports whether no further key is available.
func (r *Rotator) Exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx+1 >= len(r.keys)
}

// Reset rewinds to the first key.
func (r *Rotator) Reset() {
	r.mu.Lock()
	r.idx = 0
	r.mu.Unlock()
}

// Len returns the pool size.
func (r *Rotator) Len() int {
	return len(r.keys)
}
