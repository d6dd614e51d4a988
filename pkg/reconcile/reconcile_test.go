package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/payouts"
	"github.com/chris/wallet-payout-engine/pkg/referrals"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/chris/wallet-payout-engine/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noBookings struct{}

func (noBookings) ListSettledEarnings(context.Context, string) ([]models.Earning, error) {
	return nil, nil
}

type brokenCreditor struct {
	flagged []string
}

func (b *brokenCreditor) Credit(context.Context, *models.Referral) (bool, error) {
	return false, errors.New("ledger unavailable")
}

func (b *brokenCreditor) FlagForReview(_ context.Context, r *models.Referral, _ error) error {
	b.flagged = append(b.flagged, r.Id)
	return nil
}

type failingRepairer struct{}

func (failingRepairer) ReleaseStaleClaims(context.Context, time.Duration) (int, error) {
	return 0, errors.New("scan failed")
}

func (failingRepairer) RetryPendingRefunds(context.Context) (int, error) {
	return 0, nil
}

type fixture struct {
	store      *memory.Store
	now        time.Time
	payouts    *payouts.Service
	referrals  *referrals.Service
	campaigns  *campaigns.Service
	reconciler *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memory.New(), now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.store.SetClock(clock)

	for _, u := range []models.User{
		{Id: "asha", Role: models.RoleCompanion, MyReferralCode: "ABC123"},
		{Id: "vikram", Role: models.RoleSeeker},
	} {
		u := u
		require.NoError(t, f.store.CreateUser(ctx, &u))
	}

	logger := zap.NewNop()
	notifier := &outbox.NoopNotifier{}
	ledgerSvc := ledger.NewService(f.store, logger)
	f.payouts = payouts.NewService(f.store, ledgerSvc, earnings.NewAggregator(f.store, noBookings{}, logger), notifier, logger, payouts.WithClock(clock))
	f.referrals = referrals.NewService(f.store, ledgerSvc, notifier, logger, referrals.WithClock(clock))
	f.campaigns = campaigns.NewService(f.store, ledgerSvc, notifier, logger, campaigns.WithClock(clock))
	f.reconciler = New(f.store, f.payouts, f.referrals, f.campaigns, logger, WithClock(clock))
	return f
}

func (f *fixture) stuckReferral(t *testing.T) *models.Referral {
	t.Helper()
	r := &models.Referral{
		Id: models.ReferralID(models.ReferralTypeUser, "vikram"), ReferrerId: "asha", RefereeId: "vikram",
		ReferralCode: "ABC123", ReferralType: models.ReferralTypeUser, Status: models.ReferralCompleted, RewardAmount: 10000,
	}
	require.NoError(t, f.store.CreateReferral(context.Background(), r))
	return r
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r := f.stuckReferral(t)

	require.NoError(t, f.store.CreatePayout(ctx, &models.Payout{
		Id: "claimed", CompanionId: "asha", Amount: 5000, Status: models.PayoutPending, CreatedAt: f.now,
	}, nil))
	require.NoError(t, f.store.ApplyTransition(ctx, storage.Transition{
		Entity: storage.EntityPayout, ID: "claimed",
		From: string(models.PayoutPending), To: string(models.PayoutProcessing),
		Set: map[string]interface{}{"claim_id": "crashed", "claimed_at": f.now},
	}))

	require.NoError(t, f.store.CreatePayout(ctx, &models.Payout{
		Id: "unrefunded", CompanionId: "vikram", RequestedAmount: 7000, Amount: 7000,
		Status: models.PayoutRejected, Reserved: true, RefundPending: true, CreatedAt: f.now,
	}, nil))

	require.NoError(t, f.store.CreateCampaign(ctx, &models.CampaignReferral{Code: "DIWALI", IsActive: true, TotalSignups: 4}))

	// nothing is old enough yet except the refund and the counters
	report := f.reconciler.Run(ctx)
	assert.Equal(t, 0, report.ReleasedClaims)
	assert.Equal(t, 0, report.ResumedReferrals)
	assert.Equal(t, 1, report.RefundsCommitted)
	assert.Equal(t, 1, report.CampaignsRepaired)
	assert.Empty(t, report.Errors)

	f.now = f.now.Add(time.Hour)
	report = f.reconciler.Run(ctx)
	assert.Equal(t, 1, report.ReleasedClaims)
	assert.Equal(t, 1, report.ResumedReferrals)
	assert.Equal(t, 0, report.RefundsCommitted)
	assert.Equal(t, 0, report.CampaignsRepaired)

	stored, err := f.store.GetReferral(ctx, r.Id)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralRewarded, stored.Status)

	p, err := f.store.GetPayout(ctx, "claimed")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPending, p.Status)

	tip, err := f.store.GetLedgerTip(ctx, "vikram")
	require.NoError(t, err)
	assert.Equal(t, int64(17000), tip.Balance)

	// a third run finds nothing to do
	report = f.reconciler.Run(ctx)
	assert.Equal(t, Report{Errors: []string{}}, *report)
}

func TestResumeStuckReferrals(t *testing.T) {
	ctx := context.Background()

	t.Run("Flags Failures", func(t *testing.T) {
		f := newFixture(t)
		r := f.stuckReferral(t)
		f.now = f.now.Add(time.Hour)

		creditor := &brokenCreditor{}
		rec := New(f.store, f.payouts, creditor, f.campaigns, zap.NewNop(), WithClock(func() time.Time { return f.now }))

		resumed, flagged, err := rec.ResumeStuckReferrals(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, resumed)
		assert.Equal(t, 1, flagged)
		assert.Equal(t, []string{r.Id}, creditor.flagged)
	})

	t.Run("Real Flag", func(t *testing.T) {
		f := newFixture(t)
		r := f.stuckReferral(t)
		require.NoError(t, f.referrals.FlagForReview(ctx, r, errors.New("ledger unavailable")))

		stored, err := f.store.GetReferral(ctx, r.Id)
		require.NoError(t, err)
		assert.True(t, stored.NeedsReview)
		assert.Equal(t, models.ReferralCompleted, stored.Status)
	})
}

func TestRunKeepsGoing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stuckReferral(t)
	f.now = f.now.Add(time.Hour)

	rec := New(f.store, failingRepairer{}, f.referrals, f.campaigns, zap.NewNop(), WithClock(func() time.Time { return f.now }))
	report := rec.Run(ctx)

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "stale_claims")
	assert.Equal(t, 1, report.ResumedReferrals)
}
