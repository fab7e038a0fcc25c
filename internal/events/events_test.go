package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/bookkeeper/internal/queue"
	"github.com/nimasrn/bookkeeper/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, b := int64(4), int64(4)
	c := int64(9)
	e := New(TransactionUpdated, 7, &a, nil, &b, &c)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(7), e.StoreID)
	assert.Equal(t, []int64{4, 9}, e.CustomerIDs)
	assert.WithinDuration(t, time.Now(), e.OccurredAt, time.Second)

	assert.NotEqual(t, e.ID, New(TransactionUpdated, 7).ID)
}

func TestQueuePublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	q, err := queue.NewQueue(redis.NewFromClient(client, ""), queue.QueueConfig{
		Name:         "test:events",
		PollInterval: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer q.Stop(time.Second)

	invoiceID, customerID := int64(3), int64(5)
	e := New(InvoicePaid, 1, &customerID)
	e.InvoiceID = &invoiceID
	e.Amount = decimal.RequireFromString("224.2")
	require.NoError(t, NewQueuePublisher(q).Publish(context.Background(), e))

	received := make(chan *queue.Message, 1)
	require.NoError(t, q.Consume(func(ctx context.Context, msg *queue.Message) error {
		received <- msg
		return nil
	}))

	select {
	case msg := <-received:
		assert.Equal(t, InvoicePaid, TypeOf(msg))
		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, []int64{5}, got.CustomerIDs)
		require.NotNil(t, got.InvoiceID)
		assert.Equal(t, int64(3), *got.InvoiceID)
		assert.True(t, got.Amount.Equal(e.Amount))
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
	}
}
