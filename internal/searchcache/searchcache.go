// Package searchcache maps short tokens to the search queries that produced them,
// so a search-results button can address a query of any length.
package searchcache

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/m3rciful/vocabot/core/logger"
)

// DefaultPerOwner is the number of tokens kept per owner when no limit is configured.
const DefaultPerOwner = 32

// Cache is an in-memory token cache, partitioned by owner. Each owner keeps at
// most perOwner tokens; the least recently used one is evicted first.
type Cache struct {
	mu       sync.Mutex
	perOwner int
	owners   map[int64]*lru.Cache[string, string]
	newToken func() string
}

// New builds a cache holding up to perOwner tokens for every owner.
func New(perOwner int) *Cache {
	if perOwner <= 0 {
		perOwner = DefaultPerOwner
	}
	return &Cache{
		perOwner: perOwner,
		owners:   make(map[int64]*lru.Cache[string, string]),
		newToken: randomToken,
	}
}

// randomToken returns 8 hex characters taken from a random UUID.
func randomToken() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

// Issue remembers query for owner and returns its token.
func (c *Cache) Issue(owner int64, query string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.owners[owner]
	if !ok {
		// lru.New only fails on a non-positive size.
		bucket, _ = lru.New[string, string](c.perOwner)
		c.owners[owner] = bucket
	}
	token := c.newToken()
	evicted := bucket.Add(token, query)

	if logger.ShouldSampleDebug() {
		logger.LogEvent(context.Background(), logger.SVCSearch, slog.LevelDebug, "token.issue",
			slog.Int64("user_id", owner),
			slog.String("token", token),
			slog.Bool("evicted", evicted),
			slog.Int("count", bucket.Len()),
		)
	}
	return token
}

// Resolve returns the query behind token. Tokens of other owners never match.
func (c *Cache) Resolve(owner int64, token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.owners[owner]
	if !ok {
		return "", false
	}
	return bucket.Get(token)
}

// Reset forgets every token, as a process restart would.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners = make(map[int64]*lru.Cache[string, string])
}

// Owners reports how many owners currently hold tokens.
func (c *Cache) Owners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.owners)
}

// Len reports how many tokens owner holds.
func (c *Cache) Len(owner int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if bucket, ok := c.owners[owner]; ok {
		return bucket.Len()
	}
	return 0
}
