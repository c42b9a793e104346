package cell

import (
	"context"
	"errors"
	"time"

	"github.com/gogpu/gg/cache"
	"github.com/redis/go-redis/v9"

	"github.com/lixenwraith/geomap/core"
	"github.com/lixenwraith/geomap/parameter"
)

// MemoryCache keeps decoded payloads of recently fetched cells in a sharded LRU
// Evicted cells that re-enter the view load from here without touching the transport
type MemoryCache struct {
	next    Transport
	lru     *cache.ShardedCache[string, Payload]
	metrics *Metrics
}

// NewMemoryCache wraps next with an LRU of perShard entries per shard
func NewMemoryCache(next Transport, perShard int, m *Metrics) *MemoryCache {
	if perShard <= 0 {
		perShard = parameter.PayloadCacheSize
	}
	return &MemoryCache{
		next:    next,
		lru:     cache.NewSharded[string, Payload](perShard, cache.StringHasher),
		metrics: m,
	}
}

func (c *MemoryCache) Fetch(ctx context.Context, key Key) (Payload, error) {
	if p, ok := c.lru.Get(key.String()); ok {
		c.metrics.lookup("memory", true)
		return p, nil
	}
	c.metrics.lookup("memory", false)

	p, err := c.next.Fetch(ctx, key)
	if err != nil {
		return Payload{}, err
	}
	if p, err = Decode(p); err != nil {
		return Payload{}, err
	}
	c.lru.Set(key.String(), p)
	return p, nil
}

// Len returns the number of cached payloads
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// RedisClient is the subset of *redis.Client used by RedisCache
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache shares raw tile bytes between processes with a TTL
// Redis errors degrade to a pass-through; they never fail the fetch
type RedisCache struct {
	next    Transport
	client  RedisClient
	prefix  string
	ttl     time.Duration
	metrics *Metrics
}

// NewRedisCache wraps next; keys are stored as prefix + ":" + quadkey
func NewRedisCache(next Transport, client RedisClient, prefix string, ttl time.Duration, m *Metrics) *RedisCache {
	if ttl <= 0 {
		ttl = parameter.RedisTileTTL
	}
	return &RedisCache{next: next, client: client, prefix: prefix, ttl: ttl, metrics: m}
}

// OpenRedis connects a client for the cache, nil when addr is empty
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func (c *RedisCache) redisKey(key Key) string {
	return c.prefix + ":" + key.String()
}

func (c *RedisCache) Fetch(ctx context.Context, key Key) (Payload, error) {
	rk := c.redisKey(key)
	data, err := c.client.Get(ctx, rk).Bytes()
	switch {
	case err == nil && len(data) > 0:
		c.metrics.lookup("redis", true)
		return Payload{Data: data}, nil
	case err != nil && !errors.Is(err, redis.Nil):
		core.Logger().Debug("redis_get_failed", "key", rk, "error", err)
	}
	c.metrics.lookup("redis", false)

	p, err := c.next.Fetch(ctx, key)
	if err != nil {
		return Payload{}, err
	}
	if len(p.Data) > 0 {
		if err := c.client.Set(ctx, rk, p.Data, c.ttl).Err(); err != nil {
			core.Logger().Debug("redis_set_failed", "key", rk, "error", err)
		}
	}
	return p, nil
}
