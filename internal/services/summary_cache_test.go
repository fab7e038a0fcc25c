package services

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSummaryCache(t *testing.T) {
	mr, adapter := newMiniredis(t)
	cache := NewRedisSummaryCache(adapter, time.Minute)
	ctx := context.Background()
	summary := &model.InvoiceSummary{Total: model.StatusSummary{Count: 4, Amount: dec("10.50")}}

	t.Run("round trip", func(t *testing.T) {
		_, gen, ok := cache.Get(ctx, 1)
		require.False(t, ok)
		assert.Zero(t, gen)

		cache.Set(ctx, 1, gen, summary)
		got, _, ok := cache.Get(ctx, 1)
		require.True(t, ok)
		assert.Equal(t, int64(4), got.Total.Count)
		assert.Equal(t, "10.50", got.Total.Amount.StringFixed(2))
	})

	t.Run("set after invalidate is not served", func(t *testing.T) {
		// a rebuild that read the generation before a concurrent mutation invalidated it
		_, gen, ok := cache.Get(ctx, 2)
		require.False(t, ok)

		cache.Invalidate(ctx, 2)
		cache.Set(ctx, 2, gen, summary)

		_, current, ok := cache.Get(ctx, 2)
		assert.False(t, ok)
		assert.Equal(t, gen+1, current)
	})

	t.Run("invalidate is per store", func(t *testing.T) {
		cache.Invalidate(ctx, 3)
		_, _, ok := cache.Get(ctx, 1)
		assert.True(t, ok)
	})

	t.Run("unreadable generation skips the cache", func(t *testing.T) {
		mr.Set("test:"+generationKey(4), "garbage")
		_, gen, ok := cache.Get(ctx, 4)
		assert.False(t, ok)
		assert.Negative(t, gen)

		cache.Set(ctx, 4, gen, summary)
		assert.False(t, mr.Exists("test:"+summaryKey(4, gen)))
	})
}

func TestInvoiceService_Summary_InvalidatedDuringRebuild(t *testing.T) {
	_, adapter := newMiniredis(t)
	cache := NewRedisSummaryCache(adapter, time.Minute)
	f := newInvoiceFixture(t, cache)

	_, err := f.svc.Create(f.ctx, widgetRequest(nil))
	require.NoError(t, err)

	// the summary below stands in for a rebuild that started before the next Create committed
	_, gen, _ := cache.Get(f.ctx, f.store.ID)
	stale, err := f.svc.Summary(f.ctx)
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, widgetRequest(nil))
	require.NoError(t, err)
	cache.Set(f.ctx, f.store.ID, gen, stale)

	s, err := f.svc.Summary(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Total.Count)
}
