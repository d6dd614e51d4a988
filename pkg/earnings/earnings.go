// Package earnings derives how much a user may withdraw from the independent
// earning streams. It never reads the cached wallet balance.
package earnings

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/wallet-payout-engine/pkg/bookings"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

// FallbackReferralReward is the peer referral reward used when the SYSTEM
// campaign does not exist yet (₹100).
const FallbackReferralReward int64 = 10000

// Store is the read side the aggregator needs.
type Store interface {
	storage.ReferralReader
	storage.LedgerReader
	storage.PayoutReader
	GetCampaign(ctx context.Context, code string) (*models.CampaignReferral, error)
}

// Breakdown shows every component of an available balance.
type Breakdown struct {
	UserID           string `json:"user_id"`
	BookingEarnings  int64  `json:"booking_earnings"`
	ReferralCount    int    `json:"referral_count"`
	ReferralBonuses  int64  `json:"referral_bonuses"`
	CampaignBonuses  int64  `json:"campaign_bonuses"`
	CompletedPayouts int64  `json:"completed_payouts"`
	InFlightPayouts  int64  `json:"in_flight_payouts"`
	Available        int64  `json:"available"`
}

// Aggregator computes available balances.
type Aggregator struct {
	store    Store
	bookings bookings.Reader
	logger   *zap.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(store Store, bookings bookings.Reader, logger *zap.Logger) *Aggregator {
	return &Aggregator{store: store, bookings: bookings, logger: logger}
}

// ComputeAvailableBalance sums settled booking earnings, peer referral bonuses
// on either side of the referral and campaign bonuses, then subtracts every
// other completed or in-flight payout. excludePayoutID is left out so a payout
// can be validated against the balance it would draw from.
//
// Any read failure is returned; callers must not approve on an error.
func (a *Aggregator) ComputeAvailableBalance(ctx context.Context, userID, excludePayoutID string) (*Breakdown, error) {
	b := &Breakdown{UserID: userID}

	settled, err := a.bookings.ListSettledEarnings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read booking earnings: %w", err)
	}
	for _, e := range settled {
		b.BookingEarnings += e.Amount
	}

	count, err := a.countRewardedReferrals(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		reward, err := a.ReferralReward(ctx)
		if err != nil {
			return nil, err
		}
		b.ReferralCount = count
		b.ReferralBonuses = int64(count) * reward
	}

	entries, err := a.store.ListLedgerEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger entries: %w", err)
	}
	for _, e := range entries {
		if e.TransactionType == models.TxCampaignBonus {
			b.CampaignBonuses += e.Amount
		}
	}

	payouts, err := a.store.ListPayoutsByCompanion(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read payouts: %w", err)
	}
	for i := range payouts {
		p := &payouts[i]
		if p.Id == excludePayoutID {
			continue
		}
		switch p.Status {
		case models.PayoutCompleted:
			b.CompletedPayouts += p.WithdrawnAmount()
		case models.PayoutApproved, models.PayoutProcessing:
			b.InFlightPayouts += p.WithdrawnAmount()
		}
	}

	b.Available = b.BookingEarnings + b.ReferralBonuses + b.CampaignBonuses - b.CompletedPayouts - b.InFlightPayouts

	a.logger.Debug("available balance computed",
		zap.String("user_id", userID),
		zap.Int64("bookings", b.BookingEarnings),
		zap.Int64("referrals", b.ReferralBonuses),
		zap.Int64("campaigns", b.CampaignBonuses),
		zap.Int64("completed_payouts", b.CompletedPayouts),
		zap.Int64("in_flight_payouts", b.InFlightPayouts),
		zap.Int64("available", b.Available),
	)
	return b, nil
}

// ReferralReward returns the current peer referral reward of the SYSTEM campaign.
func (a *Aggregator) ReferralReward(ctx context.Context) (int64, error) {
	campaign, err := a.store.GetCampaign(ctx, models.SystemCampaignCode)
	if errors.Is(err, storage.ErrNotFound) {
		return FallbackReferralReward, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read SYSTEM campaign: %w", err)
	}
	return campaign.ReferralRewardAmount, nil
}

// countRewardedReferrals counts peer referrals in which the user took part,
// as referrer or as referee, that reached completed or rewarded.
func (a *Aggregator) countRewardedReferrals(ctx context.Context, userID string) (int, error) {
	asReferrer, err := a.store.ListReferralsByReferrer(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read referrals as referrer: %w", err)
	}

	count := 0
	for i := range asReferrer {
		if counts(&asReferrer[i]) {
			count++
		}
	}

	asReferee, err := a.store.GetReferral(ctx, models.ReferralID(models.ReferralTypeUser, userID))
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return 0, fmt.Errorf("failed to read referral as referee: %w", err)
	case counts(asReferee):
		count++
	}
	return count, nil
}

func counts(r *models.Referral) bool {
	if r.ReferralType != models.ReferralTypeUser {
		return false
	}
	return r.Status == models.ReferralCompleted || r.Status == models.ReferralRewarded
}
