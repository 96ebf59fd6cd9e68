// internal/enquiry/cache.go
package enquiry

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bus-enquiry-engine/internal/common/logger"
	"bus-enquiry-engine/internal/models"
)

// Cache stores rendered responses in Redis keyed by module plus the resolved
// parameter set. It is strictly best-effort: a Redis failure degrades to a
// store query, never to a dispatch error. Only non-empty successful responses
// are cached.

type cachedResponse struct {
	Text     string `json:"text"`
	RowCount int    `json:"row_count"`
	Spoken   bool   `json:"spoken"`
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

// cacheKey builds a deterministic key from the module and resolved params.
// Keys are human-readable so operators can inspect and evict them.
func cacheKey(module models.ModuleID, p params) string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("enquiry:")
	b.WriteString(string(module))
	for _, name := range names {
		b.WriteString(":")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(p[name])
	}
	return b.String()
}

func (c *Cache) get(ctx context.Context, key string) (*cachedResponse, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return nil, false
	}

	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.log.Warn("cache entry corrupt, dropping", map[string]interface{}{"key": key})
		c.client.Del(ctx, key)
		return nil, false
	}
	return &cached, true
}

func (c *Cache) set(ctx context.Context, key string, resp *cachedResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
