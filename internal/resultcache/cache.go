package resultcache

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Result is an immutable translation outcome shared by the cache and callers.
type Result struct {
	Text       string
	SourceLang string
	Provider   string
}

// Cache maps (normalized text, target language) to prior results. Entries
// expire after the TTL and the least recently used entry is evicted under
// capacity pressure; recency is updated on both read and write.
type Cache struct {
	lru *expirable.LRU[string, Result]
}

func New(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, Result](maxEntries, nil, ttl),
	}
}

// Key derives the fixed-size cache key so raw message text is never stored as
// a map key.
func Key(text, targetLang string) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(normalizeText(text))
	_, _ = digest.WriteString("\x00")
	_, _ = digest.WriteString(strings.ToLower(strings.TrimSpace(targetLang)))
	return strconv.FormatUint(digest.Sum64(), 16)
}

func (c *Cache) Get(text, targetLang string) (Result, bool) {
	if c == nil || c.lru == nil {
		return Result{}, false
	}
	return c.lru.Get(Key(text, targetLang))
}

func (c *Cache) Put(text, targetLang string, result Result) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(Key(text, targetLang), result)
}

func (c *Cache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
