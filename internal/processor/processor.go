package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/queue"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/nimasrn/bookkeeper/pkg/redis"
	"github.com/nimasrn/bookkeeper/pkg/worker"
	"github.com/pkg/errors"
)

const ProcessingTimeout = time.Second * 5
const HealthInterval = time.Second * 30
const ShutdownTimeout = time.Minute

// Processor applies one queue message.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

type Config struct {
	Queue      queue.QueueConfig
	Consumers  int
	Workers    int
	BufferSize int
}

// ProcessorService reads the ledger stream with several consumers and hands each message to a
// bounded worker pool.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	config    Config
	queues    []*queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	worker    *worker.WorkerManager
}

func NewProcessorService(adapter redis.RedisAdapter, config Config) *ProcessorService {
	if config.Consumers <= 0 {
		config.Consumers = 1
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.BufferSize <= 0 {
		config.BufferSize = config.Workers * 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ProcessorService{
		adapter: adapter,
		config:  config,
		metrics: NewServiceMetrics(),
		ctx:     ctx,
		cancel:  cancel,
		worker:  worker.NewWorkerManager(config.BufferSize, config.Workers),
	}
}

func (s *ProcessorService) RegisterProcessor(p Processor) {
	s.processor = p
	logger.Info("[processor] registered", "type", p.GetType())
}

// Start launches the worker pool and the consumers and returns once they are running.
func (s *ProcessorService) Start() error {
	if s.processor == nil {
		return errors.New("no processor registered")
	}
	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil && !errors.Is(err, worker.ErrStopped) {
			logger.Error("[processor] worker manager stopped", "error", err)
		}
	}()

	for i := 0; i < s.config.Consumers; i++ {
		cfg := s.config.Queue
		cfg.ConsumerName = fmt.Sprintf("%s-%d", cfg.ConsumerName, i)

		q, err := queue.NewQueue(s.adapter, cfg)
		if err != nil {
			return errors.Wrapf(err, "create consumer %d", i)
		}
		if err := q.Consume(s.messageHandler); err != nil {
			return errors.Wrapf(err, "start consumer %d", i)
		}
		s.queues = append(s.queues, q)
	}

	s.wg.Add(2)
	go s.metricsReporter()
	go s.healthChecker()

	logger.Info("[processor] started", "queue", s.config.Queue.Name, "consumers", len(s.queues), "workers", s.worker.Size())
	return nil
}

func (s *ProcessorService) metricsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportMetrics()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) reportMetrics() {
	stats := s.metrics.Snapshot()
	logger.Info("[processor] metrics",
		"processed", stats.Processed,
		"failed", stats.Failed,
		"by_type", stats.ByType,
		"rate_per_second", stats.RatePerSecond,
		"avg_duration_ms", stats.AvgDuration.Milliseconds(),
		"uptime_seconds", int64(stats.Uptime.Seconds()),
		"buffered", s.worker.GetUnreadCount())

	if len(s.queues) > 0 {
		if qStats, err := s.queues[0].GetStats(s.ctx); err == nil {
			logger.Info("[processor] queue stats", "total", qStats.TotalMessages, "pending", qStats.PendingMessages, "consumers", qStats.ConsumerCount)
		}
	}
}

func (s *ProcessorService) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthCheck()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) performHealthCheck() {
	if err := s.adapter.Ping(s.ctx); err != nil {
		logger.Error("[processor] health check failed: redis", "error", err)
		return
	}
	if len(s.queues) == 0 {
		return
	}
	stats, err := s.queues[0].GetStats(s.ctx)
	if err != nil {
		logger.Warn("[processor] health check: queue stats unavailable", "error", err)
		return
	}
	if stats.PendingMessages > 10000 {
		logger.Warn("[processor] health check: queue lag is high", "pending", stats.PendingMessages)
	}
}

// Stop stops the consumers first so no new jobs arrive, then the workers.
func (s *ProcessorService) Stop() {
	logger.Info("[processor] shutting down")
	s.cancel()

	var stopping sync.WaitGroup
	for i, q := range s.queues {
		stopping.Add(1)
		go func(index int, q *queue.Queue) {
			defer stopping.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("[processor] consumer did not stop", "consumer", index, "error", err)
			}
		}(i, q)
	}
	stopping.Wait()

	s.worker.Exit()
	s.wg.Wait()
	s.reportMetrics()
	logger.Info("[processor] stopped")
}

type job struct {
	ctx    context.Context
	msg    *queue.Message
	result chan error
}

// messageHandler runs on a consumer goroutine: it enqueues the message and waits for the
// worker's verdict, which decides between ack and retry.
func (s *ProcessorService) messageHandler(ctx context.Context, msg *queue.Message) error {
	ctx, cancel := context.WithTimeout(ctx, ProcessingTimeout+time.Second)
	defer cancel()

	j := &job{
		ctx:    ctx,
		msg:    msg,
		result: make(chan error, 1),
	}
	if err := s.worker.Enqueue(ctx, j); err != nil {
		return errors.Wrap(err, "enqueue message")
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for worker")
	}
}

func (s *ProcessorService) workerHandler(workerIndex int, item interface{}) {
	j, ok := item.(*job)
	if !ok {
		logger.Error("[processor] unexpected job type", "worker", workerIndex)
		return
	}
	if j.ctx.Err() != nil {
		logger.Warn("[processor] job expired before processing", "worker", workerIndex, "message_id", j.msg.ID)
		return
	}

	eventType := string(events.TypeOf(j.msg))
	start := time.Now()
	err := s.processor.Process(j.ctx, j.msg)
	if err != nil {
		s.metrics.RecordFailure(eventType)
		logger.Error("[processor] message failed", "worker", workerIndex, "message_id", j.msg.ID, "type", eventType, "error", err)
	} else {
		s.metrics.RecordSuccess(eventType, time.Since(start))
	}

	// result is buffered, the handler may already have given up
	j.result <- err
}
