package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"finbot/internal/logger"
)

// BudgetCheckSpec runs the budget monitor every day at 09:00.
const BudgetCheckSpec = "0 9 * * *"

// SessionSweepSpec runs session housekeeping.
const SessionSweepSpec = "@every 10m"

// DailySummarySpec returns the cron spec for the daily summary at hour:00.
func DailySummarySpec(hour int) string {
	return fmt.Sprintf("0 %d * * *", hour)
}

// Scheduler runs jobs at fixed wall-clock times in one location.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler evaluating specs in loc. Each run is
// cancelled after timeout.
func NewScheduler(loc *time.Location, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger{logger.Get()}),
			cron.WithChain(cron.Recover(cronLogger{logger.Get()})),
		),
		timeout: timeout,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Register schedules job under spec.
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { s.runJob(job) })
	if err != nil {
		return fmt.Errorf("scheduling %s at %q: %w", job.Name(), spec, err)
	}
	logger.Get().Infow("job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		logger.Get().Errorw("job failed", "job", job.Name(), "error", err, "duration", time.Since(start))
		return
	}
	logger.Get().Debugw("job completed", "job", job.Name(), "duration", time.Since(start))
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()

	s.cancel()
	<-s.cron.Stop().Done()
	logger.Get().Info("scheduler stopped")
	return nil
}

// cronLogger routes cron's own logging to zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
