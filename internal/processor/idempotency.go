package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/nimasrn/bookkeeper/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("event already processed")
	ErrLockAcquireFailed  = errors.New("failed to acquire processing lock")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

type IdempotencyConfig struct {
	LockTTL            time.Duration
	ProcessedTTL       time.Duration
	MaxRetries         int
	RetryKeyPrefix     string
	LockKeyPrefix      string
	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		MaxRetries:         3,
		RetryKeyPrefix:     "ledger:retry:",
		LockKeyPrefix:      "ledger:lock:",
		ProcessedKeyPrefix: "ledger:processed:",
	}
}

// IdempotencyService makes sure a ledger event is applied once even when the stream delivers
// it again or two consumers race for it.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(adapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  adapter,
		config: config,
	}
}

type ProcessingContext struct {
	EventID      string
	RetryCount   int
	IsRetry      bool
	lockAcquired bool
}

// AcquireProcessingLock fails with ErrAlreadyProcessed, ErrMaxRetriesExceeded or
// ErrLockAcquireFailed when the event must not be applied now.
func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, eventID string) (*ProcessingContext, error) {
	processed, err := s.IsProcessed(ctx, eventID)
	if err != nil {
		// a duplicate recompute is harmless, a stuck event is not
		logger.Warn("[idempotency] processed check failed", "event_id", eventID, "error", err)
	} else if processed {
		return nil, ErrAlreadyProcessed
	}

	retryCount, err := s.GetRetryCount(ctx, eventID)
	if err != nil {
		logger.Warn("[idempotency] retry count unavailable", "event_id", eventID, "error", err)
	}
	if retryCount >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: event_id=%s, retries=%d", ErrMaxRetriesExceeded, eventID, retryCount)
	}

	lockValue := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+eventID, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	logger.Debug("[idempotency] lock acquired", "event_id", eventID, "retry_count", retryCount)
	return &ProcessingContext{
		EventID:      eventID,
		RetryCount:   retryCount,
		IsRetry:      retryCount > 0,
		lockAcquired: true,
	}, nil
}

// MarkSuccess records the event as applied and drops its lock and retry counter.
func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	if err := s.redis.Set(ctx, s.config.ProcessedKeyPrefix+pc.EventID, []byte("1"), s.config.ProcessedTTL); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+pc.EventID, s.config.RetryKeyPrefix+pc.EventID); err != nil {
		logger.Warn("[idempotency] cleanup failed", "event_id", pc.EventID, "error", err)
	}
	pc.lockAcquired = false
	return nil
}

// MarkFailure bumps the retry counter and releases the lock so the event can be retried.
func (s *IdempotencyService) MarkFailure(ctx context.Context, pc *ProcessingContext, reason error) error {
	next := pc.RetryCount + 1
	err := s.redis.Set(ctx, s.config.RetryKeyPrefix+pc.EventID, []byte(strconv.Itoa(next)), s.config.ProcessedTTL)
	if err != nil {
		logger.Error("[idempotency] retry counter update failed", "event_id", pc.EventID, "error", err)
	}
	if err := s.ReleaseLock(ctx, pc); err != nil {
		return err
	}
	logger.Warn("[idempotency] event failed, will retry",
		"event_id", pc.EventID,
		"retry_count", next,
		"max_retries", s.config.MaxRetries,
		"reason", reason)
	return nil
}

func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+pc.EventID); err != nil {
		logger.Warn("[idempotency] release failed", "event_id", pc.EventID, "error", err)
		return err
	}
	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) GetRetryCount(ctx context.Context, eventID string) (int, error) {
	raw, err := s.redis.Get(ctx, s.config.RetryKeyPrefix+eventID)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	exists, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+eventID)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
