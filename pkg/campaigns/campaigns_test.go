package campaigns

import (
	"context"
	"errors"
	"testing"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/chris/wallet-payout-engine/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store    *memory.Store
	notifier *outbox.Recorder
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memory.New(), notifier: &outbox.Recorder{}}

	users := []models.User{
		{Id: "owner", Email: "owner@example.com", Role: models.RoleCompanion},
		{Id: "neha", Email: "neha@example.com", Role: models.RoleSeeker, OnboardingCompleted: true},
		{Id: "ravi", Email: "ravi@example.com", Role: models.RoleCompanion},
	}
	for i := range users {
		require.NoError(t, f.store.CreateUser(ctx, &users[i]))
	}
	require.NoError(t, f.store.CreateCampaign(ctx, &models.CampaignReferral{
		Code: "DIWALI", Name: "Diwali", OwnerId: "owner", IsActive: true,
		ReferralRewardAmount: 25000, ReferralRewardType: models.RewardWalletCredit,
	}))
	require.NoError(t, f.store.CreateCampaign(ctx, &models.CampaignReferral{
		Code: "SUMMER26", Name: "Summer", OwnerId: "owner", IsActive: true,
		ReferralRewardAmount: 0, ReferralRewardType: models.RewardWalletCredit,
	}))
	require.NoError(t, f.store.CreateCampaign(ctx, &models.CampaignReferral{
		Code: "EXPIRED", Name: "Old", OwnerId: "owner", IsActive: false,
		ReferralRewardAmount: 10000,
	}))

	logger := zap.NewNop()
	f.service = NewService(f.store, ledger.NewService(f.store, logger), f.notifier, logger)
	return f
}

func (f *fixture) entries(t *testing.T, userID string) []models.WalletTransaction {
	t.Helper()
	entries, err := f.store.ListLedgerEntries(context.Background(), userID)
	require.NoError(t, err)
	return entries
}

func (f *fixture) referral(t *testing.T, id string) *models.Referral {
	t.Helper()
	r, err := f.store.GetReferral(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (f *fixture) campaign(t *testing.T, code string) *models.CampaignReferral {
	t.Helper()
	c, err := f.store.GetCampaign(context.Background(), code)
	require.NoError(t, err)
	return c
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SUMMER26", Normalize("  summer26 "))
	assert.Equal(t, "", Normalize("   "))
}

func TestEnsureSystemCampaign(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := memory.New()
		c, err := EnsureSystemCampaign(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, earnings.FallbackReferralReward, c.ReferralRewardAmount)

		require.NoError(t, s.SetCampaignStats(ctx, models.SystemCampaignCode, storage.CampaignStats{Signups: 3}))
		c, err = EnsureSystemCampaign(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, int64(3), c.TotalSignups)
	})

	t.Run("Storage Error", func(t *testing.T) {
		_, err := EnsureSystemCampaign(ctx, &brokenCampaigns{Store: memory.New()})
		assert.Error(t, err)
	})
}

func TestRegisterCampaignSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		r, err := f.service.RegisterCampaignSignup(ctx, "neha", "diwali")
		require.NoError(t, err)

		assert.Equal(t, models.ReferralID(models.ReferralTypeCampaign, "neha"), r.Id)
		assert.Equal(t, "DIWALI", r.ReferralCode)
		assert.Equal(t, "owner", r.ReferrerId)
		assert.Equal(t, models.ReferralPending, r.Status)
		assert.Equal(t, models.RoleSeeker, r.RefereeRole)

		u, err := f.store.GetUser(ctx, "neha")
		require.NoError(t, err)
		assert.Equal(t, "DIWALI", u.CampaignReferralCode)
	})

	t.Run("Idempotent", func(t *testing.T) {
		f := newFixture(t)
		first, err := f.service.RegisterCampaignSignup(ctx, "neha", "DIWALI")
		require.NoError(t, err)
		second, err := f.service.RegisterCampaignSignup(ctx, "neha", "Diwali")
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
	})

	t.Run("Different Campaign", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RegisterCampaignSignup(ctx, "neha", "DIWALI")
		require.NoError(t, err)
		_, err = f.service.RegisterCampaignSignup(ctx, "neha", "SUMMER26")
		assert.Equal(t, apperr.CodeCampaignReferralInUse, apperr.CodeOf(err))
	})

	t.Run("Peer Referral Used", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.CreateReferral(ctx, &models.Referral{
			Id: models.ReferralID(models.ReferralTypeUser, "neha"), ReferrerId: "ravi", RefereeId: "neha",
			ReferralType: models.ReferralTypeUser, Status: models.ReferralRewarded,
		}))
		_, err := f.service.RegisterCampaignSignup(ctx, "neha", "DIWALI")
		assert.Equal(t, apperr.CodeReferralAlreadyUsed, apperr.CodeOf(err))
	})

	t.Run("Inactive", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RegisterCampaignSignup(ctx, "neha", "EXPIRED")
		assert.True(t, apperr.IsKind(err, apperr.KindInactiveCampaign))
	})

	t.Run("Not Found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RegisterCampaignSignup(ctx, "neha", "NOPE")
		assert.Equal(t, apperr.CodeCampaignNotFound, apperr.CodeOf(err))

		_, err = f.service.RegisterCampaignSignup(ctx, "neha", "system")
		assert.Equal(t, apperr.CodeInvalidReferralCode, apperr.CodeOf(err))
	})
}

func TestDistributeReferralRewards(t *testing.T) {
	ctx := context.Background()

	t.Run("Rewards Owner", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RegisterCampaignSignup(ctx, "neha", "DIWALI")
		require.NoError(t, err)

		result, err := f.service.DistributeReferralRewards(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.RewardedCount)
		assert.Equal(t, 0, result.ErrorCount)

		entries := f.entries(t, "owner")
		require.Len(t, entries, 1)
		assert.Equal(t, models.TxCampaignBonus, entries[0].TransactionType)
		assert.Equal(t, int64(25000), entries[0].Amount)

		r := f.referral(t, models.ReferralID(models.ReferralTypeCampaign, "neha"))
		assert.Equal(t, models.ReferralRewarded, r.Status)
		assert.NotNil(t, r.RewardedAt)

		c := f.campaign(t, "DIWALI")
		assert.Equal(t, int64(1), c.TotalSignups)
		assert.Equal(t, int64(1), c.TotalSeekers)

		events := f.notifier.For("owner")
		require.Len(t, events, 1)
		assert.Equal(t, models.NotifyCampaignBonus, events[0].Type)

		// a second run finds nothing pending
		result, err = f.service.DistributeReferralRewards(ctx)
		require.NoError(t, err)
		assert.Empty(t, result.Results)
		assert.Len(t, f.entries(t, "owner"), 1)
	})

	t.Run("Zero Reward Completes", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RegisterCampaignSignup(ctx, "neha", "SUMMER26")
		require.NoError(t, err)

		result, err := f.service.DistributeReferralRewards(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.CompletedCount)
		r := f.referral(t, models.ReferralID(models.ReferralTypeCampaign, "neha"))
		assert.Equal(t, models.ReferralCompleted, r.Status)
		assert.Empty(t, f.entries(t, "owner"))
		assert.Equal(t, int64(1), f.campaign(t, "SUMMER26").TotalSignups)
	})

	t.Run("Not Onboarded Skipped", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RegisterCampaignSignup(ctx, "ravi", "DIWALI")
		require.NoError(t, err)

		result, err := f.service.DistributeReferralRewards(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, result.SkippedCount)
		r := f.referral(t, models.ReferralID(models.ReferralTypeCampaign, "ravi"))
		assert.Equal(t, models.ReferralPending, r.Status)
	})

	t.Run("Inactive Campaign Left Pending", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.CreateReferral(ctx, &models.Referral{
			Id: models.ReferralID(models.ReferralTypeCampaign, "neha"), ReferrerId: "owner", RefereeId: "neha",
			ReferralCode: "EXPIRED", ReferralType: models.ReferralTypeCampaign, Status: models.ReferralPending,
		}))
		require.NoError(t, f.store.CreateReferral(ctx, &models.Referral{
			Id: models.ReferralID(models.ReferralTypeCampaign, "ravi"), ReferrerId: "owner", RefereeId: "ravi",
			ReferralCode: "GONE", ReferralType: models.ReferralTypeCampaign, Status: models.ReferralPending,
		}))
		require.NoError(t, f.store.UpdateUser(ctx, "ravi", storage.UserPatch{OnboardingCompleted: boolPtr(true)}))

		result, err := f.service.DistributeReferralRewards(ctx)
		require.NoError(t, err)

		assert.Equal(t, 2, result.ErrorCount)
		assert.Len(t, result.Errors, 2)
		assert.Equal(t, models.ReferralPending, f.referral(t, models.ReferralID(models.ReferralTypeCampaign, "neha")).Status)
		assert.Empty(t, f.entries(t, "owner"))
	})
}

func TestManuallyRewardCampaignUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		reward, err := f.service.ManuallyRewardCampaignUser(ctx, "Ravi@Example.com", "diwali")
		require.NoError(t, err)

		assert.Equal(t, int64(0), reward.OldBalance)
		assert.Equal(t, int64(25000), reward.NewBalance)
		assert.Equal(t, int64(25000), reward.Amount)

		entries := f.entries(t, "ravi")
		require.Len(t, entries, 1)
		assert.Equal(t, models.TxCampaignBonus, entries[0].TransactionType)

		r := f.referral(t, reward.ReferralID)
		assert.Equal(t, models.ReferralRewarded, r.Status)
		assert.Equal(t, int64(1), f.campaign(t, "DIWALI").TotalCompanions)
	})

	t.Run("Already Rewarded", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ManuallyRewardCampaignUser(ctx, "ravi@example.com", "DIWALI")
		require.NoError(t, err)

		_, err = f.service.ManuallyRewardCampaignUser(ctx, "ravi@example.com", "DIWALI")
		assert.Equal(t, apperr.CodeAlreadyRewarded, apperr.CodeOf(err))
		assert.Len(t, f.entries(t, "ravi"), 1)
	})

	t.Run("Not Found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ManuallyRewardCampaignUser(ctx, "nobody@example.com", "DIWALI")
		assert.Equal(t, apperr.CodeUserNotFound, apperr.CodeOf(err))

		_, err = f.service.ManuallyRewardCampaignUser(ctx, "ravi@example.com", "NOPE")
		assert.Equal(t, apperr.CodeCampaignNotFound, apperr.CodeOf(err))
	})

	t.Run("Peer Referred User", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.CreateReferral(ctx, &models.Referral{
			Id: models.ReferralID(models.ReferralTypeUser, "ravi"), ReferrerId: "owner", RefereeId: "ravi",
			ReferralCode: "OWNER1", ReferralType: models.ReferralTypeUser, Status: models.ReferralRewarded,
		}))

		_, err := f.service.ManuallyRewardCampaignUser(ctx, "ravi@example.com", "DIWALI")
		assert.Equal(t, apperr.CodeReferralAlreadyUsed, apperr.CodeOf(err))
		assert.Empty(t, f.entries(t, "ravi"))

		u, err := f.store.GetUser(ctx, "ravi")
		require.NoError(t, err)
		assert.Empty(t, u.CampaignReferralCode)
		_, err = f.store.GetReferral(ctx, models.ReferralID(models.ReferralTypeCampaign, "ravi"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("No Wallet Reward", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ManuallyRewardCampaignUser(ctx, "ravi@example.com", "SUMMER26")
		assert.Equal(t, apperr.CodeInvalidAmount, apperr.CodeOf(err))
	})
}

func TestRecalculateCampaignStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, r := range []models.Referral{
		{Id: "campaign_signup#a", RefereeId: "a", RefereeRole: models.RoleCompanion, Status: models.ReferralRewarded},
		{Id: "campaign_signup#b", RefereeId: "b", RefereeRole: models.RoleSeeker, Status: models.ReferralCompleted},
		{Id: "campaign_signup#c", RefereeId: "c", RefereeRole: models.RoleSeeker, Status: models.ReferralPending},
	} {
		r := r
		r.ReferralCode = "DIWALI"
		r.ReferralType = models.ReferralTypeCampaign
		require.NoError(t, f.store.CreateReferral(ctx, &r))
	}
	require.NoError(t, f.store.SetCampaignStats(ctx, "DIWALI", storage.CampaignStats{Signups: 7, Companions: 7}))

	results, err := f.service.RecalculateCampaignStats(ctx, "diwali")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Changed)
	assert.Equal(t, storage.CampaignStats{Signups: 2, Companions: 1, Seekers: 1}, results[0].After)

	c := f.campaign(t, "DIWALI")
	assert.Equal(t, int64(2), c.TotalSignups)
	assert.Equal(t, int64(1), c.TotalCompanions)
	assert.Equal(t, int64(1), c.TotalSeekers)

	// idempotent
	results, err = f.service.RecalculateCampaignStats(ctx, "")
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.Changed, r.Code)
	}
}

func TestUpdateCampaignReferralStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.service.UpdateCampaignReferralStats(ctx, "diwali", models.RoleCompanion))
	c := f.campaign(t, "DIWALI")
	assert.Equal(t, int64(1), c.TotalSignups)
	assert.Equal(t, int64(1), c.TotalCompanions)

	err := f.service.UpdateCampaignReferralStats(ctx, "missing", models.RoleSeeker)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateCampaign(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		c, err := f.service.CreateCampaign(ctx, &models.CampaignReferral{Code: " monsoon ", Name: "Monsoon", OwnerId: "owner", IsActive: true, ReferralRewardAmount: 5000})
		require.NoError(t, err)
		assert.Equal(t, "MONSOON", c.Code)
		assert.Equal(t, models.RewardWalletCredit, c.ReferralRewardType)
	})

	t.Run("Duplicate", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateCampaign(ctx, &models.CampaignReferral{Code: "diwali"})
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("Owner Not Found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreateCampaign(ctx, &models.CampaignReferral{Code: "X1", OwnerId: "ghost"})
		assert.Equal(t, apperr.CodeReferrerNotFound, apperr.CodeOf(err))
	})
}

type brokenCampaigns struct {
	*memory.Store
}

func (b *brokenCampaigns) GetCampaign(_ context.Context, _ string) (*models.CampaignReferral, error) {
	return nil, errors.New("dynamodb unavailable")
}

func boolPtr(b bool) *bool { return &b }
