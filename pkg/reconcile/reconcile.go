// Package reconcile repairs records left behind by interrupted or partially
// failed runs. Every step is idempotent and safe to run while the other jobs
// are active.
package reconcile

import (
	"context"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

const (
	DefaultStaleClaimAfter    = 15 * time.Minute
	DefaultStuckReferralAfter = 20 * time.Minute
)

// PayoutRepairer is the part of the payout service reconciliation drives.
type PayoutRepairer interface {
	ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int, error)
	RetryPendingRefunds(ctx context.Context) (int, error)
}

// ReferralCreditor credits completed peer referrals.
type ReferralCreditor interface {
	Credit(ctx context.Context, r *models.Referral) (bool, error)
	FlagForReview(ctx context.Context, r *models.Referral, cause error) error
}

// StatsRecalculator recounts campaign counters.
type StatsRecalculator interface {
	RecalculateCampaignStats(ctx context.Context, code string) ([]campaigns.StatsResult, error)
}

// Report counts what a run repaired.
type Report struct {
	ReleasedClaims    int      `json:"released_claims"`
	ResumedReferrals  int      `json:"resumed_referrals"`
	FlaggedReferrals  int      `json:"flagged_referrals"`
	RefundsCommitted  int      `json:"refunds_committed"`
	CampaignsRepaired int      `json:"campaigns_repaired"`
	Errors            []string `json:"errors"`
}

// Reconciler runs the repair steps.
type Reconciler struct {
	referrals storage.ReferralReader
	payouts   PayoutRepairer
	creditor  ReferralCreditor
	stats     StatsRecalculator
	metrics   *metrics.Metrics
	logger    *zap.Logger

	staleClaimAfter    time.Duration
	stuckReferralAfter time.Duration
	now                func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithThresholds overrides the default ages after which records count as stuck.
func WithThresholds(staleClaim, stuckReferral time.Duration) Option {
	return func(r *Reconciler) {
		if staleClaim > 0 {
			r.staleClaimAfter = staleClaim
		}
		if stuckReferral > 0 {
			r.stuckReferralAfter = stuckReferral
		}
	}
}

// WithMetrics counts repaired records.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a Reconciler.
func New(referrals storage.ReferralReader, payouts PayoutRepairer, creditor ReferralCreditor, stats StatsRecalculator, logger *zap.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		referrals:          referrals,
		payouts:            payouts,
		creditor:           creditor,
		stats:              stats,
		logger:             logger,
		staleClaimAfter:    DefaultStaleClaimAfter,
		stuckReferralAfter: DefaultStuckReferralAfter,
		now:                func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step. A failing step is recorded in the report and does
// not stop the others.
func (r *Reconciler) Run(ctx context.Context) *Report {
	report := &Report{Errors: []string{}}
	fail := func(step string, err error) {
		r.logger.Error("reconciliation step failed", zap.String("step", step), zap.Error(err))
		report.Errors = append(report.Errors, step+": "+err.Error())
	}

	released, err := r.payouts.ReleaseStaleClaims(ctx, r.staleClaimAfter)
	if err != nil {
		fail("stale_claims", err)
	}
	report.ReleasedClaims = released

	resumed, flagged, err := r.ResumeStuckReferrals(ctx)
	if err != nil {
		fail("stuck_referrals", err)
	}
	report.ResumedReferrals, report.FlaggedReferrals = resumed, flagged

	refunded, err := r.payouts.RetryPendingRefunds(ctx)
	if err != nil {
		fail("pending_refunds", err)
	}
	report.RefundsCommitted = refunded

	results, err := r.stats.RecalculateCampaignStats(ctx, "")
	if err != nil {
		fail("campaign_stats", err)
	}
	for _, res := range results {
		if res.Changed {
			report.CampaignsRepaired++
		}
	}

	r.metrics.RecordReconciled("payout_claim", report.ReleasedClaims)
	r.metrics.RecordReconciled("referral", report.ResumedReferrals)
	r.metrics.RecordReconciled("refund", report.RefundsCommitted)
	r.metrics.RecordReconciled("campaign_stats", report.CampaignsRepaired)

	r.logger.Info("reconciliation finished",
		zap.Int("released_claims", report.ReleasedClaims),
		zap.Int("resumed_referrals", report.ResumedReferrals),
		zap.Int("flagged_referrals", report.FlaggedReferrals),
		zap.Int("refunds", report.RefundsCommitted),
		zap.Int("campaigns", report.CampaignsRepaired),
		zap.Int("errors", len(report.Errors)),
	)
	return report
}

// ResumeStuckReferrals credits peer referrals that have been completed but
// not rewarded for longer than the threshold. A referral whose credit fails
// is flagged needs_review and retried on the next run.
func (r *Reconciler) ResumeStuckReferrals(ctx context.Context) (resumed, flagged int, err error) {
	completed, err := r.referrals.ListReferralsByStatus(ctx, models.ReferralCompleted)
	if err != nil {
		return 0, 0, err
	}

	cutoff := r.now().Add(-r.stuckReferralAfter)
	for i := range completed {
		ref := &completed[i]
		if ref.ReferralType != models.ReferralTypeUser || ref.UpdatedAt.After(cutoff) {
			continue
		}

		credited, err := r.creditor.Credit(ctx, ref)
		if err == nil {
			if credited {
				resumed++
			}
			continue
		}

		r.logger.Warn("stuck referral could not be credited",
			zap.String("referral_id", ref.Id),
			zap.Error(err),
		)
		if err := r.creditor.FlagForReview(ctx, ref, err); err != nil {
			r.logger.Error("failed to flag referral for review", zap.String("referral_id", ref.Id), zap.Error(err))
			continue
		}
		flagged++
	}
	return resumed, flagged, nil
}
