package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinshop/backend/internal/infrastructure/config"
)

type payload struct {
	Total string `json:"total"`
	Days  int    `json:"days"`
}

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, time.Minute, nil), mr
}

func countingLoader(calls *int, value payload) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		*calls++
		return value, nil
	}
}

func TestReportCache_FetchCachesUntilBump(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := countingLoader(&calls, payload{Total: "150000", Days: 3})

	var first, second payload
	require.NoError(t, c.Fetch(ctx, &first, loader, "daily", "2024-01-01", "2024-01-03"))
	require.NoError(t, c.Fetch(ctx, &second, loader, "daily", "2024-01-01", "2024-01-03"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("report:v1:daily:2024-01-01:2024-01-03"))
	assert.Equal(t, time.Minute, mr.TTL("report:v1:daily:2024-01-01:2024-01-03"))

	require.NoError(t, c.Bump(ctx))
	var third payload
	require.NoError(t, c.Fetch(ctx, &third, loader, "daily", "2024-01-01", "2024-01-03"))
	assert.Equal(t, 2, calls)
	assert.True(t, mr.Exists("report:v2:daily:2024-01-01:2024-01-03"))
}

func TestReportCache_LoaderErrorIsNotCached(t *testing.T) {
	c, _ := newTestCache(t)
	boom := errors.New("db down")
	var out payload
	err := c.Fetch(context.Background(), &out, func(context.Context) (any, error) { return nil, boom }, "k")
	assert.ErrorIs(t, err, boom)

	calls := 0
	require.NoError(t, c.Fetch(context.Background(), &out, countingLoader(&calls, payload{Days: 1}), "k"))
	assert.Equal(t, 1, calls)
}

func TestReportCache_RedisDownDegradesToLoader(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	calls := 0
	var out payload
	require.NoError(t, c.Fetch(context.Background(), &out, countingLoader(&calls, payload{Days: 7}), "k"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 7, out.Days)
}

func TestReportCache_CorruptEntryIsRebuilt(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("report:v1:k", "{not json"))
	// version key must exist for the key above to be addressed
	require.NoError(t, mr.Set(reportVersionKey, "1"))

	calls := 0
	var out payload
	require.NoError(t, c.Fetch(context.Background(), &out, countingLoader(&calls, payload{Days: 2}), "k"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, out.Days)
}

func TestReportCache_NilIsPassThrough(t *testing.T) {
	var c *ReportCache
	calls := 0
	var out payload
	require.NoError(t, c.Fetch(context.Background(), &out, countingLoader(&calls, payload{Total: "1"}), "k"))
	require.NoError(t, c.Fetch(context.Background(), &out, countingLoader(&calls, payload{Total: "1"}), "k"))
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Bump(context.Background()))

	key, err := c.BuildKey(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "report:a:b", key)
}

func TestReportCache_RequiresLoader(t *testing.T) {
	c, _ := newTestCache(t)
	var out payload
	assert.Error(t, c.Fetch(context.Background(), &out, nil, "k"))
}

func TestReportCache_BumpPublishes(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.Version(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))

	got, err := mr.Get(reportVersionKey)
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestReportCache_ListenForInvalidation(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.ListenForInvalidation(ctx, ""))

	other := redis.NewClient(&redis.Options{Addr: c.client.Options().Addr})
	defer other.Close()
	require.NoError(t, other.Publish(ctx, BumpChannel, strconv.Itoa(9)).Err())

	require.Eventually(t, func() bool {
		ver, err := c.Version(ctx)
		return err == nil && ver == 9
	}, 2*time.Second, 10*time.Millisecond)

	// stale announcements never move the version back
	c.applyAnnouncedVersion(ctx, "3")
	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9, ver)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portStr, _ := strings.Cut(mr.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
