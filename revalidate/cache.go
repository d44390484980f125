package revalidate

import (
	"strings"
	"sync"
	"time"
)

// PathCache holds rendered page responses keyed by request path. A
// mutating action calls Revalidate to mark a path stale; the next request
// regenerates it. This is the only invalidation scheme.
type PathCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration

	hits          int64
	misses        int64
	revalidations int64
}

type entry struct {
	status      int
	contentType string
	body        []byte
	stale       bool
	storedAt    time.Time
}

// Stats are simple counters for cache behavior, for diagnostics.
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Revalidations int64 `json:"revalidations"`
	Size          int   `json:"size"`
}

func NewPathCache(ttl time.Duration) *PathCache {
	return &PathCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Get returns the cached response for path, or ok=false when the path is
// unknown, stale, or expired.
func (c *PathCache) Get(path string) (status int, contentType string, body []byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[path]
	if !found || e.stale || (c.ttl > 0 && time.Since(e.storedAt) > c.ttl) {
		c.misses++
		return 0, "", nil, false
	}

	c.hits++
	return e.status, e.contentType, e.body, true
}

// Put stores a freshly rendered response for path.
func (c *PathCache) Put(path string, status int, contentType string, body []byte) {
	stored := make([]byte, len(body))
	copy(stored, body)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = &entry{
		status:      status,
		contentType: contentType,
		body:        stored,
		storedAt:    time.Now(),
	}
}

// Revalidate marks path and every cached URL beneath it stale so the
// next request regenerates them. Entries are keyed by full request URL,
// so a namespace like "/api/images" covers the list URLs with any query
// string as well as the detail views under it. Revalidating a path with
// no cached entries is a no-op.
func (c *PathCache) Revalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.revalidations++
	for key, e := range c.entries {
		if underPath(key, path) {
			e.stale = true
		}
	}
}

// underPath reports whether the cache key falls inside path. The match
// stops at segment boundaries: "/api/images" covers "/api/images/abc"
// and "/api/images?page=2" but not "/api/imagesets".
func underPath(key, path string) bool {
	if key == path {
		return true
	}
	if !strings.HasPrefix(key, path) {
		return false
	}
	if strings.HasSuffix(path, "/") {
		return true
	}
	rest := key[len(path):]
	return rest[0] == '/' || rest[0] == '?'
}

func (c *PathCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		Revalidations: c.revalidations,
		Size:          len(c.entries),
	}
}
