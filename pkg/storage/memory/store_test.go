package memory

import (
	"context"
	"testing"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credit(userID string, seq, before, amount int64) storage.Posting {
	return storage.Posting{Entry: models.WalletTransaction{
		UserId:          userID,
		Sequence:        seq,
		Id:              userID + "-" + time.Now().String(),
		TransactionType: models.TxReferralBonus,
		Amount:          amount,
		BalanceBefore:   before,
		BalanceAfter:    before + amount,
		ReferenceId:     "ref-1",
		ReferenceType:   models.RefReferral,
		Status:          models.EntryStatusCompleted,
	}}
}

func TestCommitLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateUser(ctx, &models.User{Id: "u1"}))

		require.NoError(t, s.CommitLedger(ctx, []storage.Posting{credit("u1", 1, 0, 10000)}, nil))
		require.NoError(t, s.CommitLedger(ctx, []storage.Posting{credit("u1", 2, 10000, 500)}, nil))

		tip, err := s.GetLedgerTip(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), tip.Sequence)
		assert.Equal(t, int64(10500), tip.Balance)

		u, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(10500), u.WalletBalance)
		assert.Equal(t, int64(2), u.LedgerVersion)

		byRef, err := s.ListLedgerEntriesByReference(ctx, "ref-1")
		require.NoError(t, err)
		assert.Len(t, byRef, 2)
	})

	t.Run("Stale Sequence", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateUser(ctx, &models.User{Id: "u1"}))
		require.NoError(t, s.CommitLedger(ctx, []storage.Posting{credit("u1", 1, 0, 100)}, nil))

		err := s.CommitLedger(ctx, []storage.Posting{credit("u1", 1, 0, 100)}, nil)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)

		entries, _ := s.ListLedgerEntries(ctx, "u1")
		assert.Len(t, entries, 1)
	})

	t.Run("Failed Transition Leaves No Trace", func(t *testing.T) {
		s := New()
		require.NoError(t, s.CreateUser(ctx, &models.User{Id: "u1"}))
		require.NoError(t, s.CreateReferral(ctx, &models.Referral{Id: "r1", Status: models.ReferralRewarded}))

		err := s.CommitLedger(ctx, []storage.Posting{credit("u1", 1, 0, 100)}, []storage.Transition{{
			Entity: storage.EntityReferral, ID: "r1",
			From: string(models.ReferralCompleted), To: string(models.ReferralRewarded),
		}})
		assert.ErrorIs(t, err, storage.ErrConditionFailed)

		entries, _ := s.ListLedgerEntries(ctx, "u1")
		assert.Empty(t, entries)
		u, _ := s.GetUser(ctx, "u1")
		assert.Zero(t, u.WalletBalance)
	})

	t.Run("Unknown User", func(t *testing.T) {
		s := New()
		err := s.CommitLedger(ctx, []storage.Posting{credit("ghost", 1, 0, 100)}, nil)
		assert.ErrorIs(t, err, storage.ErrVersionConflict)
	})
}

func TestApplyTransition(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreatePayout(ctx, &models.Payout{Id: "p1", Status: models.PayoutPending, Amount: 1000}, nil))

	claimedAt := time.Now().UTC().Truncate(time.Second)
	claim := storage.Transition{
		Entity: storage.EntityPayout, ID: "p1",
		From: string(models.PayoutPending), To: string(models.PayoutProcessing),
		Set: map[string]interface{}{"claim_id": "c1", "claimed_at": claimedAt},
	}

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, s.ApplyTransition(ctx, claim))

		p, err := s.GetPayout(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, models.PayoutProcessing, p.Status)
		assert.Equal(t, "c1", p.ClaimId)
		require.NotNil(t, p.ClaimedAt)
		assert.True(t, claimedAt.Equal(*p.ClaimedAt))
		assert.Equal(t, int64(1000), p.Amount)
	})

	t.Run("Already Claimed", func(t *testing.T) {
		assert.ErrorIs(t, s.ApplyTransition(ctx, claim), storage.ErrConditionFailed)
	})

	t.Run("Match Mismatch", func(t *testing.T) {
		release := storage.Transition{
			Entity: storage.EntityPayout, ID: "p1",
			From: string(models.PayoutProcessing), To: string(models.PayoutPending),
			Match:  map[string]interface{}{"claim_id": "someone-else"},
			Remove: []string{"claim_id", "claimed_at"},
		}
		assert.ErrorIs(t, s.ApplyTransition(ctx, release), storage.ErrConditionFailed)
	})

	t.Run("Release And Count Attempt", func(t *testing.T) {
		release := storage.Transition{
			Entity: storage.EntityPayout, ID: "p1",
			From: string(models.PayoutProcessing), To: string(models.PayoutPending),
			Match:  map[string]interface{}{"claim_id": "c1"},
			Remove: []string{"claim_id", "claimed_at"},
			Add:    map[string]int64{"attempts": 1},
		}
		require.NoError(t, s.ApplyTransition(ctx, release))

		p, _ := s.GetPayout(ctx, "p1")
		assert.Equal(t, models.PayoutPending, p.Status)
		assert.Empty(t, p.ClaimId)
		assert.Nil(t, p.ClaimedAt)
		assert.Equal(t, 1, p.Attempts)
	})

	t.Run("Not Found", func(t *testing.T) {
		assert.ErrorIs(t, s.ApplyTransition(ctx, storage.Transition{Entity: storage.EntityPayout, ID: "nope"}), storage.ErrNotFound)
	})
}

func TestCreatePayoutWithReservation(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, &models.User{Id: "c1", Role: models.RoleCompanion}))
	require.NoError(t, s.CommitLedger(ctx, []storage.Posting{credit("c1", 1, 0, 50000)}, nil))

	debit := credit("c1", 2, 50000, -20000)
	debit.Entry.TransactionType = models.TxPayout
	require.NoError(t, s.CreatePayout(ctx, &models.Payout{Id: "p1", CompanionId: "c1", Reserved: true}, &debit))

	stale := credit("c1", 2, 50000, -20000)
	err := s.CreatePayout(ctx, &models.Payout{Id: "p2", CompanionId: "c1", Reserved: true}, &stale)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	_, err = s.GetPayout(ctx, "p2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	u, _ := s.GetUser(ctx, "c1")
	assert.Equal(t, int64(30000), u.WalletBalance)
}

func TestReferralsOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Now().UTC()
	require.NoError(t, s.CreateReferral(ctx, &models.Referral{Id: "b", Status: models.ReferralPending, CreatedAt: base}))
	require.NoError(t, s.CreateReferral(ctx, &models.Referral{Id: "a", Status: models.ReferralPending, CreatedAt: base.Add(time.Minute)}))
	assert.ErrorIs(t, s.CreateReferral(ctx, &models.Referral{Id: "a"}), storage.ErrAlreadyExists)

	pending, err := s.ListReferralsByStatus(ctx, models.ReferralPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].Id)
}

func TestSetCampaignReferralCode(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, &models.User{Id: "u1"}))

	require.NoError(t, s.SetCampaignReferralCode(ctx, "u1", "SUMMER26"))
	require.NoError(t, s.SetCampaignReferralCode(ctx, "u1", "SUMMER26"))
	assert.ErrorIs(t, s.SetCampaignReferralCode(ctx, "u1", "WINTER25"), storage.ErrConditionFailed)
	assert.ErrorIs(t, s.SetCampaignReferralCode(ctx, "ghost", "SUMMER26"), storage.ErrNotFound)
}

func TestGetUserByReferralCode(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, &models.User{Id: "u1", MyReferralCode: "abc123"}))

	u, err := s.GetUserByReferralCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", u.MyReferralCode)

	code := "xyz789"
	require.NoError(t, s.UpdateUser(ctx, "u1", storage.UserPatch{MyReferralCode: &code}))
	_, err = s.GetUserByReferralCode(ctx, "ABC123")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	u, err = s.GetUserByReferralCode(ctx, "Xyz789")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.Id)
}
