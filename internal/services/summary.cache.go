package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/nimasrn/bookkeeper/pkg/redis"
	"github.com/pkg/errors"
)

// SummaryCache keeps computed invoice summaries per store. Failures are logged and treated as
// misses.
//
// Entries are versioned by a per-store generation: Get reports the generation it looked at and
// Set stores under that generation, so a summary computed before an Invalidate is never served
// after it.
type SummaryCache interface {
	Get(ctx context.Context, storeID int64) (summary *model.InvoiceSummary, generation int64, ok bool)
	Set(ctx context.Context, storeID, generation int64, summary *model.InvoiceSummary)
	Invalidate(ctx context.Context, storeID int64)
}

type RedisSummaryCache struct {
	redis redis.RedisAdapter
	ttl   time.Duration
}

func NewRedisSummaryCache(adapter redis.RedisAdapter, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{
		redis: adapter,
		ttl:   ttl,
	}
}

func generationKey(storeID int64) string {
	return "invoice-summary-gen:" + strconv.FormatInt(storeID, 10)
}

func summaryKey(storeID, generation int64) string {
	return "invoice-summary:" + strconv.FormatInt(storeID, 10) + ":" + strconv.FormatInt(generation, 10)
}

// generation returns the store's current generation, 0 before the first invalidation and -1
// when it cannot be read.
func (c *RedisSummaryCache) generation(ctx context.Context, storeID int64) int64 {
	raw, err := c.redis.Get(ctx, generationKey(storeID))
	if errors.Is(err, redis.NilError) {
		return 0
	}
	if err != nil {
		logger.Warn("[summary-cache] generation read failed", "store_id", storeID, "error", err)
		return -1
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		logger.Warn("[summary-cache] corrupt generation", "store_id", storeID, "error", err)
		return -1
	}
	return gen
}

func (c *RedisSummaryCache) Get(ctx context.Context, storeID int64) (*model.InvoiceSummary, int64, bool) {
	gen := c.generation(ctx, storeID)
	if gen < 0 {
		return nil, gen, false
	}
	raw, err := c.redis.Get(ctx, summaryKey(storeID, gen))
	if err != nil {
		if !errors.Is(err, redis.NilError) {
			logger.Warn("[summary-cache] get failed", "store_id", storeID, "error", err)
		}
		return nil, gen, false
	}
	var s model.InvoiceSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.Warn("[summary-cache] corrupt entry", "store_id", storeID, "error", err)
		return nil, gen, false
	}
	return &s, gen, true
}

// Set is a no-op for a negative generation.
func (c *RedisSummaryCache) Set(ctx context.Context, storeID, generation int64, summary *model.InvoiceSummary) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, summaryKey(storeID, generation), raw, c.ttl); err != nil {
		logger.Warn("[summary-cache] set failed", "store_id", storeID, "error", err)
	}
}

// Invalidate moves the store to a new generation. Entries of older generations are left to
// expire.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, storeID int64) {
	if _, err := c.redis.Incr(ctx, generationKey(storeID)); err != nil {
		logger.Warn("[summary-cache] invalidate failed", "store_id", storeID, "error", err)
	}
}

// NopSummaryCache never hits. It is used when Redis is not configured.
type NopSummaryCache struct{}

func (NopSummaryCache) Get(context.Context, int64) (*model.InvoiceSummary, int64, bool) {
	return nil, -1, false
}

func (NopSummaryCache) Set(context.Context, int64, int64, *model.InvoiceSummary) {}

func (NopSummaryCache) Invalidate(context.Context, int64) {}
