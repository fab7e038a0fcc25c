package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService checks the dependencies a request needs. Redis is optional; a nil pinger is
// skipped.
type HealthService struct {
	db    Pinger
	redis Pinger
}

func NewHealthService(db Pinger, redis Pinger) *HealthService {
	return &HealthService{
		db:    db,
		redis: redis,
	}
}

func (s *HealthService) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		return errors.Wrap(err, "database")
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			return errors.Wrap(err, "redis")
		}
	}
	return nil
}
