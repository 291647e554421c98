package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHGetAll(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	res := store.HGetAll(ctx, "test")
	val, err := res.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, len(val))
}

func TestHSetDel(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	_, err := store.HSet(ctx, "test", "f1", "v1", "f2", "v2").Result()
	require.NoError(t, err)
	val, err := store.HGetAll(ctx, "test").Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f1": "v1", "f2": "v2"}, val)
	_, err = store.Del(ctx, "test").Result()
	require.NoError(t, err)
	val, err = store.HGetAll(ctx, "test").Result()
	require.NoError(t, err)
	assert.Equal(t, 0, len(val))
}

func TestHSetOddValues(t *testing.T) {
	store := NewMockRedisClient()
	_, err := store.HSet(context.Background(), "test", "f1").Result()
	assert.Error(t, err)
}

func TestExpireAt(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	require.NoError(t, store.HSet(ctx, "test", "f1", "v1").Err())

	ok, err := store.ExpireAt(ctx, "missing", time.Now()).Result()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ExpireAt(ctx, "test", time.Now().Add(-time.Second)).Err())
	val, err := store.HGetAll(ctx, "test").Result()
	require.NoError(t, err)
	assert.Len(t, val, 0)

	require.NoError(t, store.HSet(ctx, "test", "f1", "v1").Err())
	require.NoError(t, store.ExpireAt(ctx, "test", time.Now().Add(time.Hour)).Err())
	val, err = store.HGetAll(ctx, "test").Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f1": "v1"}, val)
}

func TestTxPipelinedAppliesAllCommands(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()
	require.NoError(t, store.HSet(ctx, "test", "stale", "v0").Err())

	cmds, err := store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, "test")
		pipe.HSet(ctx, "test", "f1", "v1")
		pipe.ExpireAt(ctx, "test", time.Now().Add(time.Hour))
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, cmds, 3)
	val, err := store.HGetAll(ctx, "test").Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f1": "v1"}, val)
	assert.Contains(t, store.expiries, "test")
}

func TestTxPipelinedReportsFailedCommand(t *testing.T) {
	ctx := context.Background()
	store := NewMockRedisClient()

	_, err := store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, "test", "odd")
		return nil
	})

	assert.Error(t, err)
}
