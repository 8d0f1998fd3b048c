package services

import (
	"container/list"
	"sync"

	"github.com/codyseavey/textify/internal/metrics"
)

// DefaultCacheSize is the number of translations kept in memory.
const DefaultCacheSize = 500

type cacheKey struct {
	source string
	target string
	text   string
}

type cacheEntry struct {
	key   cacheKey
	value string
}

// CacheStats is a point-in-time view of the cache.
type CacheStats struct {
	Entries  int    `json:"entries"`
	Capacity int    `json:"capacity"`
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
}

// TranslationCache is a bounded, process-local cache of translations keyed by
// (source, target, text). When full, the oldest inserted entry is evicted; reads
// do not refresh an entry's position.
type TranslationCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = oldest
	entries  map[cacheKey]*list.Element
	hits     uint64
	misses   uint64
}

// NewTranslationCache creates a cache holding at most capacity entries.
func NewTranslationCache(capacity int) *TranslationCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &TranslationCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[cacheKey]*list.Element, capacity),
	}
}

// Get returns the cached translation for the exact triple.
func (c *TranslationCache) Get(source, target, text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[cacheKey{source, target, text}]
	if !ok {
		c.misses++
		metrics.TranslationCacheMisses.Inc()
		return "", false
	}
	c.hits++
	metrics.TranslationCacheHits.Inc()
	return el.Value.(*cacheEntry).value, true
}

// Put stores a translation. Overwriting an existing key keeps its original insertion slot.
func (c *TranslationCache) Put(source, target, text, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{source, target, text}
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).value = translated
		return
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, value: translated})
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		metrics.TranslationCacheEvictions.Inc()
	}
	metrics.TranslationCacheSize.Set(float64(c.order.Len()))
}

// Len returns the number of cached entries.
func (c *TranslationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns entry and hit counts.
func (c *TranslationCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:  c.order.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}
