package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/config"
	"github.com/chris/wallet-payout-engine/pkg/jobs"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler manages cron job scheduling for deployments that do not use
// EventBridge schedules.
type Scheduler struct {
	cron   *cron.Cron
	runner *jobs.Runner
	logger *zap.Logger
	ctx    context.Context
}

// New creates a scheduler and registers every job. An invalid cron spec is an
// error. Runs of the same job never overlap.
func New(runner *jobs.Runner, specs config.SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	// UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron:   c,
		runner: runner,
		logger: logger,
		ctx:    context.Background(),
	}

	entries := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{jobs.ProcessPayouts, specs.ProcessPayouts, func(ctx context.Context) error {
			_, err := runner.ProcessPayouts(ctx)
			return err
		}},
		{jobs.DistributeRewards, specs.DistributeRewards, func(ctx context.Context) error {
			_, err := runner.DistributeRewards(ctx)
			return err
		}},
		{jobs.Reconcile, specs.Reconcile, func(ctx context.Context) error {
			_, err := runner.Reconcile(ctx)
			return err
		}},
	}
	for _, j := range entries {
		j := j
		if _, err := s.cron.AddFunc(j.spec, func() { _ = j.run(s.ctx) }); err != nil {
			return nil, fmt.Errorf("failed to register %s job: %w", j.name, err)
		}
		logger.Info("registered cron job", zap.String("job", j.name), zap.String("spec", j.spec))
	}
	return s, nil
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", s.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
