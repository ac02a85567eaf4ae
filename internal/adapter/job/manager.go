// Package job runs periodic ledger maintenance on a gocron scheduler.
package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Job is a named unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Manager owns the scheduler and the context jobs run under.
type Manager struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewManager creates a stopped manager.
func NewManager(logger *slog.Logger) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{scheduler: s, logger: logger, ctx: ctx, cancel: cancel}, nil
}

// Register schedules job every interval. A run still in progress when the
// next tick fires is not overlapped; the tick is rescheduled.
func (m *Manager) Register(job Job, every time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { m.execute(job) }),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (m *Manager) execute(job Job) {
	start := time.Now()
	if err := job.Run(m.ctx); err != nil {
		m.logger.Error("job failed", slog.String("job", job.Name()), slog.Any("error", err))
		return
	}
	m.logger.Debug("job finished", slog.String("job", job.Name()), slog.Duration("took", time.Since(start)))
}

// Start begins running registered jobs.
func (m *Manager) Start() {
	m.scheduler.Start()
	m.logger.Info("job manager started")
}

// Stop cancels running jobs and waits for the scheduler to shut down.
func (m *Manager) Stop() error {
	m.cancel()
	return m.scheduler.Shutdown()
}
