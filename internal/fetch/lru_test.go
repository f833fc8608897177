package fetch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage(url string) *Page {
	return &Page{URL: url, Text: "text of " + url, Platform: PlatformUnknown}
}

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU(10, time.Hour)

	_, ok := c.Get("https://example.com/a")
	assert.False(t, ok)

	c.Set("https://example.com/a", testPage("https://example.com/a"))
	page, ok := c.Get("https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "text of https://example.com/a", page.Text)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestLRU_ReturnsCopies(t *testing.T) {
	c := NewLRU(10, time.Hour)
	original := testPage("k")
	c.Set("k", original)
	original.Text = "mutated after insert"

	page, ok := c.Get("k")
	require.True(t, ok)
	page.Text = "mutated after get"

	again, _ := c.Get("k")
	assert.Equal(t, "text of k", again.Text)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(2, time.Hour)

	c.Set("a", testPage("a"))
	c.Set("b", testPage("b"))
	_, _ = c.Get("a") // a is now most recent
	c.Set("c", testPage("c"))

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b should have been evicted")
	assert.True(t, okC)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_ExpiresEntries(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU(10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", testPage("a"))
	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be removed on access")
}

func TestLRU_SetRefreshesExisting(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU(10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", testPage("a"))
	now = now.Add(50 * time.Second)
	c.Set("a", &Page{URL: "a", Text: "fresh"})
	now = now.Add(50 * time.Second)

	page, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "fresh", page.Text)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU(10, time.Hour)
	c.Set("a", testPage("a"))
	c.Delete("a")
	c.Delete("missing")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLRU_ShardedCapacity(t *testing.T) {
	c := NewLRU(1000, time.Hour)
	assert.Len(t, c.shards, 15)

	for i := 0; i < 5000; i++ {
		key := fmt.Sprintf("https://example.com/jobs/%d", i)
		c.Set(key, testPage(key))
	}
	assert.LessOrEqual(t, c.Len(), 1000)
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU(256, time.Hour)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k-%d", (w*500+i)%300)
				c.Set(key, testPage(key))
				_, _ = c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 256)
}
