package sources

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-recommender/internal/common/logger"
	"college-recommender/internal/models"
)

// countingClient wraps a client and counts upstream queries.
type countingClient struct {
	Client
	calls int64
}

func (c *countingClient) Query(ctx context.Context, ft models.FieldType, collegeID string) (*Record, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.Client.Query(ctx, ft, collegeID)
}

func newCacheFixture(t *testing.T) (*CachedClient, *countingClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	inner := &countingClient{
		Client: NewStaticClientFromRecords("ugc", 0.9,
			[]models.FieldType{models.FieldAccreditation},
			map[string]map[string]interface{}{
				"c-001": {"accreditation": []interface{}{"NAAC A++"}},
			}),
	}

	cached := NewCachedClient(inner, rdb, 24*time.Hour, logger.NewTestLogger(t))
	return cached, inner, mr
}

func TestCachedClient_SecondQueryServedFromCache(t *testing.T) {
	cached, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	first, err := cached.Query(ctx, models.FieldAccreditation, "c-001")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(1), atomic.LoadInt64(&inner.calls))

	second, err := cached.Query(ctx, models.FieldAccreditation, "c-001")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&inner.calls), "second query must not reach the source")

	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, first.Value, second.Value)
}

func TestCachedClient_ExpiryFallsThrough(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.Query(ctx, models.FieldAccreditation, "c-001")
	require.NoError(t, err)

	mr.FastForward(25 * time.Hour)

	_, err = cached.Query(ctx, models.FieldAccreditation, "c-001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&inner.calls))
}

func TestCachedClient_EmptyAnswerNotCached(t *testing.T) {
	cached, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	record, err := cached.Query(ctx, models.FieldAccreditation, "c-unknown")
	require.NoError(t, err)
	assert.Nil(t, record)

	record, err = cached.Query(ctx, models.FieldAccreditation, "c-unknown")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, int64(2), atomic.LoadInt64(&inner.calls))
}
