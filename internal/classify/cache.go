// internal/classify/cache.go
package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"helpdesk-automation/internal/common/logger"
)

const cacheKeyPrefix = "classification:"

// Cache memoizes classification results in Redis. Classification is
// deterministic per input, so cached entries never go stale before
// the TTL is reached; the TTL only bounds memory.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

// Get returns the cached result for the given text, or nil on a miss.
// Cache errors are logged and treated as misses.
func (c *Cache) Get(ctx context.Context, title, description string) *Result {
	key := cacheKey(title, description)

	payload, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.log.Warn("Classification cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		c.log.Warn("Classification cache entry malformed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil
	}
	return &result
}

// Put stores a result. Failures are logged and otherwise ignored.
func (c *Cache) Put(ctx context.Context, title, description string, result *Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.log.Warn("Classification cache encode failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	key := cacheKey(title, description)
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("Classification cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func cacheKey(title, description string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + description))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
