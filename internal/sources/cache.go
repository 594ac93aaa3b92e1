package sources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/models"
)

// CachedClient wraps a source client with a Redis record cache. Only raw
// records are cached; verification outcomes are recomputed every run so a
// run always reflects a fresh snapshot.
type CachedClient struct {
	inner  Client
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedClient {
	return &CachedClient{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"source": inner.Name()}),
	}
}

func (c *CachedClient) Name() string { return c.inner.Name() }

func (c *CachedClient) Reliability() float64 { return c.inner.Reliability() }

func (c *CachedClient) Covers(ft models.FieldType) bool { return c.inner.Covers(ft) }

func (c *CachedClient) Query(ctx context.Context, ft models.FieldType, collegeID string) (*Record, error) {
	cacheKey := "source:record:" + c.inner.Name() + ":" + collegeID + ":" + string(ft)

	if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
		var record Record
		if err := json.Unmarshal([]byte(val), &record); err == nil {
			metrics.SourceCacheHits.WithLabelValues("hit").Inc()
			return &record, nil
		}
	}
	metrics.SourceCacheHits.WithLabelValues("miss").Inc()

	record, err := c.inner.Query(ctx, ft, collegeID)
	if err != nil || record == nil {
		return record, err
	}

	if data, err := json.Marshal(record); err == nil {
		if err := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
			c.logger.Warn("failed to cache source record", map[string]interface{}{
				"key":   cacheKey,
				"error": err.Error(),
			})
		}
	}

	return record, nil
}
