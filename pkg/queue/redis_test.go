package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/dispatchq/pkg/core"
)

// openTestRedis connects to the Redis instance named by TEST_REDIS_ADDR and
// returns a queue on a per-test key. Tests are skipped when the variable is
// unset so the suite stays runnable without a broker.
func openTestRedis(t *testing.T, opts ...RedisOption) *Redis {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis queue tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	key := "dispatchq:test:" + uuid.New().String()
	opts = append([]RedisOption{WithRedisKey(key)}, opts...)
	q := NewRedis(client, opts...)

	t.Cleanup(func() {
		client.Del(context.Background(), key)
		client.Close()
	})
	return q
}

func TestRedis_FIFO(t *testing.T) {
	q := openTestRedis(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "a"))
	require.NoError(t, q.Push(ctx, "b"))
	require.NoError(t, q.Push(ctx, "c"))

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRedis_PopEmptyTimesOut(t *testing.T) {
	q := openTestRedis(t, WithRedisPopWait(time.Second))

	_, err := q.Pop(context.Background())
	assert.ErrorIs(t, err, core.ErrQueueEmpty)
}

func TestRedis_Len(t *testing.T) {
	q := openTestRedis(t)
	ctx := context.Background()

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, q.Push(ctx, "a"))
	n, err = q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedis_Ping(t *testing.T) {
	q := openTestRedis(t)
	assert.NoError(t, q.Ping(context.Background()))
}
