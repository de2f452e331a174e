package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forgeworks/dispatchq/pkg/core"
)

// DefaultRedisKey is the list key holding pending job references.
const DefaultRedisKey = "dispatchq:jobs"

// Redis is a core.Queue backed by a Redis list. References are appended
// with LPUSH and consumed with BRPOP, preserving FIFO order across any
// number of competing consumers.
type Redis struct {
	client  *redis.Client
	key     string
	popWait time.Duration
}

// RedisOption configures a Redis queue.
type RedisOption func(*Redis)

// WithRedisKey overrides the list key.
func WithRedisKey(key string) RedisOption {
	return func(q *Redis) { q.key = key }
}

// WithRedisPopWait sets the BRPOP block timeout.
func WithRedisPopWait(d time.Duration) RedisOption {
	return func(q *Redis) { q.popWait = d }
}

// NewRedis creates a Redis-backed queue on the given client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	q := &Redis{
		client:  client,
		key:     DefaultRedisKey,
		popWait: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push appends a job reference.
func (q *Redis) Push(ctx context.Context, jobID string) error {
	if err := q.client.LPush(ctx, q.key, jobID).Err(); err != nil {
		return queueErr(err)
	}
	return nil
}

// Pop blocks on BRPOP until a reference arrives or the wait timeout
// elapses. Once popped, a reference is gone from the list: a consumer
// crash between Pop and the store transition loses it, which is what the
// orphan sweep compensates for.
func (q *Redis) Pop(ctx context.Context) (string, error) {
	res, err := q.client.BRPop(ctx, q.popWait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", core.ErrQueueEmpty
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", queueErr(err)
	}
	// BRPOP returns [key, value].
	return res[1], nil
}

// Len returns the list length.
func (q *Redis) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, queueErr(err)
	}
	return n, nil
}

// Ping checks backend liveness.
func (q *Redis) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return queueErr(err)
	}
	return nil
}

func queueErr(err error) error {
	return fmt.Errorf("%w: %v", core.ErrQueueUnavailable, err)
}
