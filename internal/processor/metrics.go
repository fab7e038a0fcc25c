package processor

import (
	"sync"
	"time"

	"github.com/nimasrn/bookkeeper/pkg/prom"
)

// ServiceMetrics keeps in-process counters for the periodic log line; the same events are
// exported to prometheus as they happen.
type ServiceMetrics struct {
	mu        sync.Mutex
	processed map[string]int64
	failed    map[string]int64
	duration  time.Duration
	startedAt time.Time
}

type MetricsSnapshot struct {
	Processed     int64
	Failed        int64
	ByType        map[string]int64
	RatePerSecond float64
	AvgDuration   time.Duration
	Uptime        time.Duration
}

func NewServiceMetrics() *ServiceMetrics {
	return &ServiceMetrics{
		processed: make(map[string]int64),
		failed:    make(map[string]int64),
		startedAt: time.Now(),
	}
}

func (m *ServiceMetrics) RecordSuccess(eventType string, d time.Duration) {
	m.mu.Lock()
	m.processed[eventType]++
	m.duration += d
	m.mu.Unlock()
	prom.LedgerEventProcessed(eventType, d.Seconds())
}

func (m *ServiceMetrics) RecordFailure(eventType string) {
	m.mu.Lock()
	m.failed[eventType]++
	m.mu.Unlock()
	prom.LedgerEventFailed(eventType)
}

func (m *ServiceMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := MetricsSnapshot{
		ByType: make(map[string]int64, len(m.processed)),
		Uptime: time.Since(m.startedAt),
	}
	for t, n := range m.processed {
		s.Processed += n
		s.ByType[t] = n
	}
	for _, n := range m.failed {
		s.Failed += n
	}
	if secs := s.Uptime.Seconds(); secs > 0 {
		s.RatePerSecond = float64(s.Processed) / secs
	}
	if s.Processed > 0 {
		s.AvgDuration = m.duration / time.Duration(s.Processed)
	}
	return s
}
