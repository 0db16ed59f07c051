package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// CacheMetrics receives hit/miss observations. *prometheus.AppMetrics
// satisfies it.
type CacheMetrics interface {
	CacheResult(cache string, hit bool)
}

const resultCacheName = "resolution"

// ResultCache stores ResolvedIdentifier values as JSON with a jittered TTL.
type ResultCache struct {
	client  *Client
	logger  logging.Logger
	ttl     time.Duration
	metrics CacheMetrics
}

// CacheOption customises a ResultCache.
type CacheOption func(*ResultCache)

func WithCacheMetrics(m CacheMetrics) CacheOption {
	return func(c *ResultCache) { c.metrics = m }
}

// NewResultCache returns a cache whose entries expire after roughly ttl.
// A zero ttl keeps entries until evicted.
func NewResultCache(client *Client, ttl time.Duration, log logging.Logger, opts ...CacheOption) *ResultCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &ResultCache{client: client, logger: log, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// jitterTTL spreads expiry by ±10% so a batch does not expire at once.
func (c *ResultCache) jitterTTL() time.Duration {
	if c.ttl == 0 {
		return 0
	}
	jitter := float64(c.ttl) * 0.1 * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(jitter)
}

func (c *ResultCache) observe(hit bool) {
	if c.metrics != nil {
		c.metrics.CacheResult(resultCacheName, hit)
	}
}

// Get returns the cached result for key. A miss is (zero, false, nil).
func (c *ResultCache) Get(ctx context.Context, key string) (chemical.ResolvedIdentifier, bool, error) {
	var out chemical.ResolvedIdentifier
	data, err := c.client.Get(ctx, c.client.Key(key)).Bytes()
	if err == redis.Nil {
		c.observe(false)
		return out, false, nil
	}
	if err != nil {
		return out, false, errors.Wrap(err, errors.ErrCodeCacheError, "redis get")
	}
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.Warn("dropping undecodable cache entry", logging.String("key", key), logging.Err(err))
		_ = c.client.Del(ctx, c.client.Key(key)).Err()
		c.observe(false)
		return chemical.ResolvedIdentifier{}, false, nil
	}
	c.observe(true)
	return out, true, nil
}

// Set stores r under key.
func (c *ResultCache) Set(ctx context.Context, key string, r chemical.ResolvedIdentifier) error {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode resolved identifier")
	}
	if err := c.client.Set(ctx, c.client.Key(key), data, c.jitterTTL()).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis set")
	}
	return nil
}

//Personal.AI order the ending
