package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"request-control-gateway/middleware/requestcontrol/domain"

	"github.com/redis/go-redis/v9"
)

// RedisAuditLog grava eventos de controle como JSON numa lista Redis limitada
// (LPUSH + LTRIM), mais recente primeiro.
type RedisAuditLog struct {
	rdb    *redis.Client
	key    string
	maxLen int64
}

type RedisAuditOption func(*RedisAuditLog)

func WithAuditKey(key string) RedisAuditOption {
	return func(l *RedisAuditLog) {
		if k := strings.TrimSpace(key); k != "" {
			l.key = k
		}
	}
}

func WithAuditMaxLen(n int64) RedisAuditOption {
	return func(l *RedisAuditLog) { l.maxLen = n }
}

func NewRedisAuditLog(rdb *redis.Client, opts ...RedisAuditOption) *RedisAuditLog {
	l := &RedisAuditLog{
		rdb:    rdb,
		key:    "requestcontrol:audit",
		maxLen: 1000,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisAuditLog) Append(ctx context.Context, ev domain.ControlEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	pipe := l.rdb.TxPipeline()
	pipe.LPush(ctx, l.key, b)
	if l.maxLen > 0 {
		pipe.LTrim(ctx, l.key, 0, l.maxLen-1)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (l *RedisAuditLog) Recent(ctx context.Context, limit int) ([]domain.ControlEvent, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := l.rdb.LRange(ctx, l.key, 0, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.ControlEvent, 0, len(raw))
	for _, r := range raw {
		var ev domain.ControlEvent
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			return nil, fmt.Errorf("decode audit event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
