package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// QueryKey returns a stable digest of the normalised query for caching.
func QueryKey(query WorkQuery) string {
	aliases := append([]string(nil), query.Aliases...)
	for i := range aliases {
		aliases[i] = strings.ToLower(strings.TrimSpace(aliases[i]))
	}
	sort.Strings(aliases)
	langs := append([]string(nil), query.Languages...)
	for i := range langs {
		langs[i] = strings.ToLower(strings.TrimSpace(langs[i]))
	}

	var builder strings.Builder
	builder.WriteString(strings.ToLower(strings.TrimSpace(query.Title)))
	builder.WriteByte('|')
	builder.WriteString(strings.Join(aliases, ","))
	builder.WriteByte('|')
	builder.WriteString(strconv.Itoa(query.Year))
	builder.WriteByte('|')
	builder.WriteString(strconv.Itoa(query.Season))
	builder.WriteByte('|')
	builder.WriteString(strconv.Itoa(query.Episode))
	builder.WriteByte('|')
	builder.WriteString(query.Type)
	builder.WriteByte('|')
	builder.WriteString(strings.Join(langs, ","))

	sum := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	meta    *WorkMetadata
	expires time.Time
}

// Cache is an in-memory TTL cache for resolver results. Negative results
// (nil metadata) are cached too so hopeless queries do not hammer providers.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache builds a cache; ttl <= 0 disables expiry checks entirely.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, entries: make(map[string]cacheEntry), now: time.Now}
}

// Get returns the cached result for a key. The second value reports a hit.
func (c *Cache) Get(key string) (*WorkMetadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.meta, true
}

// Put stores a result.
func (c *Cache) Put(key string, meta *WorkMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{meta: meta, expires: c.now().Add(c.ttl)}
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
