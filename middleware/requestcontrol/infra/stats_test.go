package infra

import (
	"context"
	"testing"
	"time"

	"request-control-gateway/middleware/requestcontrol/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStatsStore_Record(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackRoutes(true))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: true, Reason: domain.ReasonEnabled, Method: "GET", Path: "/api/users"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: false, Reason: domain.ReasonDisabled, Method: "GET", Path: "/api/users"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: true, Reason: domain.ReasonWhitelist, Method: "GET", Path: "/actuator/health"}))

	assert.Equal(t, domain.Counters{Allowed: 2, Rejected: 1}, s.Total())
	assert.Equal(t, domain.Counters{Allowed: 1, Rejected: 1}, s.ByRoute()["GET /api/users"])
	assert.Equal(t, int64(1), s.ByReason()[domain.ReasonDisabled])
}

func TestMemoryStatsStore_RoutesOffByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Allowed: true, Method: "GET", Path: "/x"}))
	assert.Empty(t, s.ByRoute())
	assert.Equal(t, int64(1), s.Total().Allowed)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStatsStore_Record(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStatsStore(rdb, WithStatsPrefix("rc:stats:"), WithStatsTrackRoutes(true), WithStatsTTL(time.Hour))
	ctx := context.Background()
	at := time.Date(2025, 8, 27, 10, 43, 30, 0, time.UTC)

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: false, Reason: domain.ReasonDisabled, Method: "GET", Path: "/api/users", At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: true, Reason: domain.ReasonWhitelist, Method: "GET", Path: "/error", At: at}))

	assert.Equal(t, "1", mr.HGet("rc:stats:total", "rejected"))
	assert.Equal(t, "1", mr.HGet("rc:stats:total", "allowed"))
	assert.Equal(t, "1", mr.HGet("rc:stats:reason", "disabled"))
	assert.Equal(t, "1", mr.HGet("rc:stats:minute:202508271043", "rejected"))
	assert.Equal(t, "1", mr.HGet("rc:stats:route", "GET /api/users:rejected"))
	assert.Equal(t, time.Hour, mr.TTL("rc:stats:minute:202508271043"))
	assert.Equal(t, time.Duration(0), mr.TTL("rc:stats:total"))
}

func TestRedisStatsStore_NoBucket(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStatsStore(rdb, WithStatsBucket(" NONE "))

	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Allowed: true, At: time.Now()}))

	assert.Equal(t, "1", mr.HGet("requestcontrol:stats:total", "allowed"))
	for _, k := range mr.Keys() {
		assert.NotContains(t, k, ":minute:")
	}
}

func TestRedisStatsStore_NilIsNoop(t *testing.T) {
	var s *RedisStatsStore
	assert.NoError(t, s.Record(context.Background(), domain.StatsEvent{}))
}

func TestMemoryStatsStore_Snapshot(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackRoutes(true))
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: false, Reason: domain.ReasonDisabled, Method: "GET", Path: "/api/users"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: true, Reason: domain.ReasonWhitelist, Method: "GET", Path: "/error"}))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Counters{Allowed: 1, Rejected: 1}, snap.Total)
	assert.Equal(t, int64(1), snap.ByReason[domain.ReasonDisabled])
	assert.Equal(t, domain.Counters{Rejected: 1}, snap.ByRoute["GET /api/users"])

	snap, err = NewMemoryStatsStore().Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.ByRoute)
}

func TestRedisStatsStore_Snapshot(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewRedisStatsStore(rdb, WithStatsTrackRoutes(true))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: false, Reason: domain.ReasonDisabled, Method: "GET", Path: "/api/users"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: false, Reason: domain.ReasonDisabled, Method: "GET", Path: "/api/users"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Allowed: true, Reason: domain.ReasonWhitelist, Method: "GET", Path: "/error"}))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Counters{Allowed: 1, Rejected: 2}, snap.Total)
	assert.Equal(t, int64(2), snap.ByReason[domain.ReasonDisabled])
	assert.Equal(t, int64(1), snap.ByReason[domain.ReasonWhitelist])
	assert.Equal(t, domain.Counters{Rejected: 2}, snap.ByRoute["GET /api/users"])
	assert.Equal(t, domain.Counters{Allowed: 1}, snap.ByRoute["GET /error"])
}
