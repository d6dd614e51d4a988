package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/payouts"
	"github.com/chris/wallet-payout-engine/pkg/reconcile"
	"go.uber.org/zap"
)

// Job names, also used as metric labels.
const (
	ProcessPayouts    = "process_payouts"
	DistributeRewards = "distribute_rewards"
	Reconcile         = "reconcile"
)

// PayoutProcessor runs the payout validator.
type PayoutProcessor interface {
	ProcessPayouts(ctx context.Context) (*payouts.BatchResult, error)
}

// RewardDistributor pays campaign signup rewards.
type RewardDistributor interface {
	DistributeReferralRewards(ctx context.Context) (*campaigns.DistributionResult, error)
}

// Reconciler repairs leftovers of interrupted runs.
type Reconciler interface {
	Run(ctx context.Context) *reconcile.Report
}

// Runner coordinates all scheduled jobs. The same runner backs the Lambda
// handlers and the cron scheduler.
type Runner struct {
	payouts    PayoutProcessor
	rewards    RewardDistributor
	reconciler Reconciler
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(p PayoutProcessor, r RewardDistributor, rec Reconciler, m *metrics.Metrics, logger *zap.Logger) *Runner {
	return &Runner{
		payouts:    p,
		rewards:    r,
		reconciler: rec,
		metrics:    m,
		logger:     logger,
	}
}

// runWithRecovery wraps job execution with panic recovery and timing.
func (r *Runner) runWithRecovery(ctx context.Context, job string, fn func(ctx context.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job panicked", zap.String("job", job), zap.Any("panic", rec))
			err = fmt.Errorf("job %s panicked: %v", job, rec)
		}
		r.metrics.ObserveJob(job, time.Since(start), err)
	}()

	r.logger.Info("starting job", zap.String("job", job))
	if err = fn(ctx); err != nil {
		r.logger.Error("job failed", zap.String("job", job), zap.Error(err))
		return err
	}
	r.logger.Info("job completed", zap.String("job", job), zap.Duration("took", time.Since(start)))
	return nil
}

// ProcessPayouts runs one validator batch.
func (r *Runner) ProcessPayouts(ctx context.Context) (*payouts.BatchResult, error) {
	var res *payouts.BatchResult
	err := r.runWithRecovery(ctx, ProcessPayouts, func(ctx context.Context) error {
		var err error
		res, err = r.payouts.ProcessPayouts(ctx)
		return err
	})
	return res, err
}

// DistributeRewards runs one campaign reward distribution.
func (r *Runner) DistributeRewards(ctx context.Context) (*campaigns.DistributionResult, error) {
	var res *campaigns.DistributionResult
	err := r.runWithRecovery(ctx, DistributeRewards, func(ctx context.Context) error {
		var err error
		res, err = r.rewards.DistributeReferralRewards(ctx)
		return err
	})
	return res, err
}

// Reconcile runs every repair step. Step failures are in the report and do
// not fail the job.
func (r *Runner) Reconcile(ctx context.Context) (*reconcile.Report, error) {
	var report *reconcile.Report
	err := r.runWithRecovery(ctx, Reconcile, func(ctx context.Context) error {
		report = r.reconciler.Run(ctx)
		return nil
	})
	return report, err
}

// RunAll runs every job once, in dependency order (for manual execution).
func (r *Runner) RunAll(ctx context.Context) error {
	var firstErr error
	if _, err := r.Reconcile(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if _, err := r.DistributeRewards(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if _, err := r.ProcessPayouts(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
