package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Monitor probes the storage driver and Redis on a cron schedule and caches
// the result for the health endpoint.
type Monitor struct {
	storage Pinger
	driver  string
	redis   Pinger

	reporters map[string]func() interface{}

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// New builds a monitor. redis may be nil when Redis is disabled.
func New(storage Pinger, driver string, redis Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		storage:  storage,
		driver:   driver,
		redis:    redis,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, m.Refresh); err != nil {
		logger.Error("monitor schedule rejected", zap.String("schedule", schedule), zap.Error(err))
	}
	return m
}

// Report adds a named snapshot to every status, such as cache counters or
// store statistics. Call it before Start.
func (m *Monitor) Report(name string, fn func() interface{}) {
	if fn == nil {
		return
	}
	if m.reporters == nil {
		m.reporters = make(map[string]func() interface{})
	}
	m.reporters[name] = fn
}

// Start runs one probe immediately and then hands over to the scheduler.
func (m *Monitor) Start() {
	m.Refresh()
	m.cron.Start()
}

// Stop waits for a running probe to finish or ctx to expire.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh probes every dependency once and stores the result.
func (m *Monitor) Refresh() {
	status := Status{
		Storage:       m.check("storage", m.storage, 3*time.Second),
		StorageDriver: m.driver,
		RedisEnabled:  m.redis != nil,
		LastCheck:     time.Now(),
	}
	if m.redis != nil {
		status.Redis = m.check("redis", m.redis, 2*time.Second)
	}
	if len(m.reporters) > 0 {
		status.Details = make(map[string]interface{}, len(m.reporters))
		for name, fn := range m.reporters {
			status.Details[name] = fn()
		}
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.Healthy() != status.Healthy() {
		m.logger.Warn("dependency health changed",
			zap.Bool("healthy", status.Healthy()),
			zap.Bool("storage", status.Storage),
			zap.Bool("redis", status.Redis))
	}
}

func (m *Monitor) check(name string, p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		m.logger.Debug("health probe failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}
