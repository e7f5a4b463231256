package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"request-control-gateway/middleware/requestcontrol/domain"

	"github.com/redis/go-redis/v9"
)

type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas nas chaves de série temporal.
	// total e reason são cumulativos e não expiram.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackRoutes bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackRoutes(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackRoutes = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "requestcontrol:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "rejected"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
	if ev.Reason != "" {
		pipe.HIncrBy(ctx, s.prefix+":reason", string(ev.Reason), 1)
	}

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if s.trackRoutes {
		routeField := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
		if routeField != "" {
			pipe.HIncrBy(ctx, s.prefix+":route", routeField+":"+field, 1)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Snapshot lê os hashes cumulativos (total, reason e, se rastreadas, rotas).
// As séries por minuto ficam de fora: servem para consulta direta no Redis.
func (s *RedisStatsStore) Snapshot(ctx context.Context) (domain.StatsSnapshot, error) {
	snap := domain.StatsSnapshot{ByReason: map[domain.Reason]int64{}}
	if s == nil || s.rdb == nil {
		return snap, nil
	}

	pipe := s.rdb.Pipeline()
	total := pipe.HGetAll(ctx, s.prefix+":total")
	reason := pipe.HGetAll(ctx, s.prefix+":reason")
	var route *redis.MapStringStringCmd
	if s.trackRoutes {
		route = pipe.HGetAll(ctx, s.prefix+":route")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("read stats: %w", err)
	}

	for field, v := range total.Val() {
		addCounter(&snap.Total, field, parseCount(v))
	}
	for field, v := range reason.Val() {
		snap.ByReason[domain.Reason(field)] = parseCount(v)
	}
	if route != nil {
		snap.ByRoute = map[string]domain.Counters{}
		for field, v := range route.Val() {
			// campo = "<METHOD> <path>:<allowed|rejected>"
			i := strings.LastIndex(field, ":")
			if i <= 0 {
				continue
			}
			c := snap.ByRoute[field[:i]]
			addCounter(&c, field[i+1:], parseCount(v))
			snap.ByRoute[field[:i]] = c
		}
	}
	return snap, nil
}

func addCounter(c *domain.Counters, field string, n int64) {
	switch field {
	case "allowed":
		c.Allowed += n
	case "rejected":
		c.Rejected += n
	}
}

func parseCount(v string) int64 {
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}
