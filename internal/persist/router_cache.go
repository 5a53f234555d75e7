package persist

import (
	"encoding/json"
	"os"
	"time"

	"coevolve/pkg/cache"
)

// RouterCacheEntry is one value in router_cache.json.
type RouterCacheEntry struct {
	Result     string    `json:"result"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// RouterCache is the optional router's task-fingerprint -> cached-result
// mapping (spec §6). It is never read by the core during a step — only the
// external router maintains it — but this core owns its on-disk shape and
// LRU-eviction-on-write behavior, reusing the teacher's own generic LRU
// (pkg/cache.LRU) via type parameters instead of a bespoke map+list.
type RouterCache struct {
	path string
	lru  *cache.LRU[string, RouterCacheEntry]
	lock *FileLock
}

// NewRouterCache builds a cache capped at maxEntries (default 10,000 per
// spec §6), backed by the file at path.
func NewRouterCache(path string, maxEntries int) *RouterCache {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &RouterCache{
		path: path,
		lru:  cache.New[string, RouterCacheEntry](&cache.Config{MaxEntries: maxEntries}),
		lock: NewFileLock(path),
	}
}

// Get retrieves a cached entry by task fingerprint.
func (c *RouterCache) Get(fingerprint string) (RouterCacheEntry, bool) {
	return c.lru.Get(fingerprint)
}

// Put stores an entry, evicting the least-recently-used entry if at
// capacity, and persists the full cache to disk under the file lock.
func (c *RouterCache) Put(fingerprint string, entry RouterCacheEntry) error {
	c.lru.Set(fingerprint, entry)
	return c.flush()
}

func (c *RouterCache) flush() error {
	entries := c.lru.Entries()
	snapshot := make(map[string]RouterCacheEntry, len(entries))
	for _, e := range entries {
		snapshot[e.Key] = e.Value
	}

	if err := c.lock.Acquire(DefaultAcquireTimeout); err != nil {
		return err
	}
	defer c.lock.Release()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Load restores the cache from an existing router_cache.json, if present.
func (c *RouterCache) Load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var snapshot map[string]RouterCacheEntry
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	for k, v := range snapshot {
		c.lru.Set(k, v)
	}
	return nil
}
