package queue

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/bookkeeper/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) redis.RedisAdapter {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, "")
}

func testConfig(name string) QueueConfig {
	return QueueConfig{
		Name:              name,
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      50 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
	}
}

func TestNewQueue(t *testing.T) {
	adapter := setupTestRedis(t)

	t.Run("name is required", func(t *testing.T) {
		_, err := NewQueue(adapter, QueueConfig{})
		assert.Error(t, err)
	})

	t.Run("existing group is reused", func(t *testing.T) {
		q1, err := NewQueue(adapter, testConfig("test:group"))
		require.NoError(t, err)
		defer q1.Stop(time.Second)

		q2, err := NewQueue(adapter, testConfig("test:group"))
		require.NoError(t, err)
		defer q2.Stop(time.Second)
	})

	t.Run("defaults", func(t *testing.T) {
		q, err := NewQueue(adapter, QueueConfig{Name: "test:defaults"})
		require.NoError(t, err)
		defer q.Stop(time.Second)

		assert.Equal(t, "default-group", q.config.ConsumerGroup)
		assert.Equal(t, 3, q.config.MaxRetries)
		assert.Equal(t, 30*time.Second, q.config.VisibilityTimeout)
		assert.Equal(t, int64(10), q.config.BatchSize)
	})
}

func TestQueue_PublishAndConsume(t *testing.T) {
	adapter := setupTestRedis(t)
	q, err := NewQueue(adapter, testConfig("test:queue"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	_, err = q.PublishJSON(ctx, map[string]string{"key": "value"}, map[string]string{"type": "test"})
	require.NoError(t, err)

	received := make(chan *Message, 1)
	require.NoError(t, q.Consume(func(ctx context.Context, msg *Message) error {
		received <- msg
		return nil
	}))

	select {
	case msg := <-received:
		var data map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, "value", data["key"])
		assert.Equal(t, "test", msg.Metadata["type"])
		assert.Zero(t, msg.Attempts)
		assert.False(t, msg.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}

	assert.Eventually(t, func() bool {
		stats, err := q.GetStats(ctx)
		return err == nil && stats.PendingMessages == 0
	}, 2*time.Second, 50*time.Millisecond)
}

func TestQueue_FailedMessageIsRetried(t *testing.T) {
	adapter := setupTestRedis(t)
	cfg := testConfig("test:retry")
	cfg.VisibilityTimeout = 200 * time.Millisecond
	q, err := NewQueue(adapter, cfg)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	_, err = q.Publish(context.Background(), []byte(`{}`), nil)
	require.NoError(t, err)

	var calls atomic.Int32
	done := make(chan struct{})
	require.NoError(t, q.Consume(func(ctx context.Context, msg *Message) error {
		if calls.Add(1) == 1 {
			return assert.AnError
		}
		close(done)
		return nil
	}))

	select {
	case <-done:
		assert.Equal(t, int32(2), calls.Load())
	case <-time.After(3 * time.Second):
		t.Fatal("message was not redelivered")
	}
}

func TestQueue_DeadLetter(t *testing.T) {
	adapter := setupTestRedis(t)
	cfg := testConfig("test:dlq")
	cfg.MaxRetries = 1
	cfg.VisibilityTimeout = 100 * time.Millisecond
	cfg.EnableDLQ = true
	q, err := NewQueue(adapter, cfg)
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	_, err = q.Publish(ctx, []byte(`{"bad":true}`), map[string]string{"type": "broken"})
	require.NoError(t, err)

	require.NoError(t, q.Consume(func(ctx context.Context, msg *Message) error {
		return assert.AnError
	}))

	assert.Eventually(t, func() bool {
		n, err := adapter.XLen(ctx, q.DeadLetterName())
		return err == nil && n == 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestQueue_GetStats(t *testing.T) {
	adapter := setupTestRedis(t)
	q, err := NewQueue(adapter, testConfig("test:stats"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := q.PublishJSON(ctx, map[string]int{"count": i}, nil)
		require.NoError(t, err)
	}

	stats, err := q.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalMessages)
	assert.Zero(t, stats.PendingMessages)
}

func TestQueue_Stop(t *testing.T) {
	adapter := setupTestRedis(t)
	q, err := NewQueue(adapter, testConfig("test:stop"))
	require.NoError(t, err)

	require.NoError(t, q.Consume(func(ctx context.Context, msg *Message) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	}))
	assert.NoError(t, q.Stop(2*time.Second))
	assert.Error(t, q.Consume(nil))
}
