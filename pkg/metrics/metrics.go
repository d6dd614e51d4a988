package metrics

import (
	"time"

	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const namespace = "wallet"

// Metrics holds the engine's prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	logger *zap.Logger

	payoutOutcomes   *prometheus.CounterVec
	referralOutcomes *prometheus.CounterVec
	campaignRewards  *prometheus.CounterVec
	ledgerConflicts  prometheus.Counter
	creditedRupees   *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	reconciled       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, logger *zap.Logger) *Metrics {
	m := &Metrics{
		logger: logger,

		payoutOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payout_outcomes_total",
				Help:      "Payouts resolved by the validator, by resulting status and reason code.",
			},
			[]string{"status", "code"},
		),
		referralOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "referral_outcomes_total",
				Help:      "Peer referral applications, by outcome code.",
			},
			[]string{"outcome"},
		),
		campaignRewards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "campaign_reward_outcomes_total",
				Help:      "Campaign referrals handled by the distributor, by outcome.",
			},
			[]string{"outcome"},
		),
		ledgerConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_version_conflicts_total",
				Help:      "Ledger appends that lost the race for the next sequence and were retried.",
			},
		),
		creditedRupees: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_movement_rupees_total",
				Help:      "Absolute amount moved through the ledger in rupees, by transaction type.",
			},
			[]string{"transaction_type"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Duration of batch job runs.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job", "status"},
		),
		reconciled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciled_records_total",
				Help:      "Records repaired by reconciliation, by kind.",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.payoutOutcomes,
		m.referralOutcomes,
		m.campaignRewards,
		m.ledgerConflicts,
		m.creditedRupees,
		m.jobDuration,
		m.reconciled,
	)

	return m
}

// RecordPayoutOutcome counts a resolved payout.
func (m *Metrics) RecordPayoutOutcome(status, code string) {
	if m == nil {
		return
	}
	m.payoutOutcomes.WithLabelValues(status, code).Inc()
}

// RecordReferralOutcome counts a referral application.
func (m *Metrics) RecordReferralOutcome(outcome string) {
	if m == nil {
		return
	}
	m.referralOutcomes.WithLabelValues(outcome).Inc()
}

// RecordCampaignReward counts a distributor result.
func (m *Metrics) RecordCampaignReward(outcome string) {
	if m == nil {
		return
	}
	m.campaignRewards.WithLabelValues(outcome).Inc()
}

// RecordLedgerConflict counts a lost append race.
func (m *Metrics) RecordLedgerConflict() {
	if m == nil {
		return
	}
	m.ledgerConflicts.Inc()
}

// RecordLedgerMovement adds a committed entry's amount.
func (m *Metrics) RecordLedgerMovement(txType models.TransactionType, paise int64) {
	if m == nil {
		return
	}
	if paise < 0 {
		paise = -paise
	}
	m.creditedRupees.WithLabelValues(string(txType)).Add(models.Rupees(paise))
}

// ObserveJob records how long a job run took.
func (m *Metrics) ObserveJob(job string, took time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.jobDuration.WithLabelValues(job, status).Observe(took.Seconds())
	m.logger.Debug("job observed", zap.String("job", job), zap.Duration("took", took), zap.String("status", status))
}

// RecordReconciled counts records repaired by reconciliation.
func (m *Metrics) RecordReconciled(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.reconciled.WithLabelValues(kind).Add(float64(n))
}
