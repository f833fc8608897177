package fetch

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	maxShards = 16
	// Caches smaller than this use one shard so eviction order stays exact.
	minEntriesPerShard = 64
)

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// LRU is an in-memory page cache bounded by both entry count and age.
// Keys are spread over independently locked shards, so a lookup never waits
// on an eviction in an unrelated shard.
type LRU struct {
	shards []*lruShard
	ttl    time.Duration
	now    func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

type lruShard struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front is most recently used
}

type lruEntry struct {
	key       string
	page      Page
	expiresAt time.Time
}

// NewLRU creates a cache holding at most capacity pages for at most ttl.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	n := capacity / minEntriesPerShard
	if n < 1 {
		n = 1
	}
	if n > maxShards {
		n = maxShards
	}

	c := &LRU{
		shards: make([]*lruShard, n),
		ttl:    ttl,
		now:    time.Now,
	}
	for i := range c.shards {
		shardCap := capacity / n
		if i < capacity%n {
			shardCap++
		}
		c.shards[i] = &lruShard{
			capacity: shardCap,
			items:    make(map[string]*list.Element),
			order:    list.New(),
		}
	}
	return c
}

func (c *LRU) shard(key string) *lruShard {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

// Get returns a copy of the cached page. Expired entries are dropped.
func (c *LRU) Get(key string) (*Page, bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	entry := elem.Value.(*lruEntry)
	if c.ttl > 0 && !c.now().Before(entry.expiresAt) {
		s.remove(elem)
		c.misses.Add(1)
		return nil, false
	}

	s.order.MoveToFront(elem)
	c.hits.Add(1)
	page := entry.page
	return &page, true
}

// Set stores a copy of page. Setting an existing key refreshes it.
func (c *LRU) Set(key string, page *Page) {
	if page == nil {
		return
	}
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if elem, ok := s.items[key]; ok {
		entry := elem.Value.(*lruEntry)
		entry.page = *page
		entry.expiresAt = expiresAt
		s.order.MoveToFront(elem)
		return
	}

	s.items[key] = s.order.PushFront(&lruEntry{key: key, page: *page, expiresAt: expiresAt})
	for s.order.Len() > s.capacity {
		s.remove(s.order.Back())
	}
}

// Delete removes key if present.
func (c *LRU) Delete(key string) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.remove(elem)
	}
}

// Len counts stored entries, including expired ones not yet evicted.
func (c *LRU) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.order.Len()
		s.mu.Unlock()
	}
	return total
}

// Stats returns hit, miss and entry counts.
func (c *LRU) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}

func (s *lruShard) remove(elem *list.Element) {
	entry := s.order.Remove(elem).(*lruEntry)
	delete(s.items, entry.key)
}
