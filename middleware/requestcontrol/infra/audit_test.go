package infra

import (
	"context"
	"testing"
	"time"

	"request-control-gateway/middleware/requestcontrol/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id string, authorized bool) domain.ControlEvent {
	return domain.ControlEvent{
		ID:         id,
		Operation:  domain.OperationSet,
		Client:     "10.0.0.1",
		Authorized: authorized,
		Previous:   true,
		Enabled:    false,
		At:         time.Date(2025, 8, 27, 10, 43, 30, 0, time.UTC),
	}
}

func TestMemoryAuditLog_KeepsMostRecentFirst(t *testing.T) {
	l := NewMemoryAuditLog(2)
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, event("a", true)))
	require.NoError(t, l.Append(ctx, event("b", false)))
	require.NoError(t, l.Append(ctx, event("c", true)))

	got, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got, err = l.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestRedisAuditLog_AppendAndRecent(t *testing.T) {
	_, rdb := newTestRedis(t)
	l := NewRedisAuditLog(rdb, WithAuditKey("rc:audit"), WithAuditMaxLen(2))
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, event("a", true)))
	require.NoError(t, l.Append(ctx, event("b", false)))
	require.NoError(t, l.Append(ctx, event("c", true)))

	got, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.False(t, got[1].Authorized)
	assert.True(t, got[0].At.Equal(event("c", true).At))

	n, err := rdb.LLen(ctx, "rc:audit").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
