package mailqueue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, "test:mail")
}

func TestRedisQueue_FIFO(t *testing.T) {
	queue := newRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, Job{ID: "1", To: "a@x.com", Link: "http://x/1"}))
	require.NoError(t, queue.Enqueue(ctx, Job{ID: "2", To: "b@x.com", Link: "http://x/2"}))

	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	first, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "http://x/1", first.Link)

	second, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)
}

func TestRedisQueue_DequeueCancelled(t *testing.T) {
	queue := newRedisQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := queue.Dequeue(ctx)
	assert.Error(t, err)
}
