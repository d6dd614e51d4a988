package campaigns

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

// ManualReward is the balance movement of a manual campaign reward.
type ManualReward struct {
	UserID     string `json:"user_id"`
	ReferralID string `json:"referral_id"`
	OldBalance int64  `json:"old_balance"`
	NewBalance int64  `json:"new_balance"`
	Amount     int64  `json:"amount"`
}

// ManuallyRewardCampaignUser credits a user the campaign reward directly,
// without waiting for onboarding. The user's campaign_signup referral is
// created if missing and marked rewarded with the credit.
func (s *Service) ManuallyRewardCampaignUser(ctx context.Context, email, rawCode string) (*ManualReward, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, fmt.Sprintf("No user with email %s", email))
	}
	if err != nil {
		return nil, apperr.System("failed to read user", err)
	}

	campaign, err := s.GetCampaign(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	if !campaign.IsActive {
		return nil, apperr.InactiveCampaign(fmt.Sprintf("Campaign %s is not active", campaign.Code))
	}
	if !campaign.PaysWalletCredit() {
		return nil, apperr.Validation(apperr.CodeInvalidAmount, fmt.Sprintf("Campaign %s has no wallet reward", campaign.Code))
	}

	referral, err := s.findOrCreateSignup(ctx, user, campaign)
	if err != nil {
		return nil, err
	}
	if referral.Status == models.ReferralRewarded {
		return nil, apperr.Conflict(apperr.CodeAlreadyRewarded, "User has already been rewarded for this campaign")
	}

	amount := campaign.ReferralRewardAmount
	entry, err := s.ledger.Credit(ctx, ledger.Movement{
		UserID:        user.Id,
		Amount:        amount,
		Type:          models.TxCampaignBonus,
		ReferenceID:   referral.Id,
		ReferenceType: models.RefReferral,
		Description:   fmt.Sprintf("Campaign %s bonus (manual)", campaign.Code),
	}, storage.Transition{
		Entity: storage.EntityReferral,
		ID:     referral.Id,
		From:   string(referral.Status),
		To:     string(models.ReferralRewarded),
		Set: map[string]interface{}{
			"reward_amount": amount,
			"rewarded_at":   s.now(),
		},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return nil, apperr.Conflict(apperr.CodeAlreadyRewarded, "User has already been rewarded for this campaign")
	}
	if err != nil {
		return nil, apperr.System("failed to credit campaign bonus", err)
	}

	// completed signups were counted when they qualified
	if referral.Status == models.ReferralPending {
		s.countSignup(ctx, campaign.Code, user.Role)
	}
	s.metrics.RecordCampaignReward("manual")
	s.logger.Info("campaign reward credited manually",
		zap.String("user_id", user.Id),
		zap.String("code", campaign.Code),
		zap.Int64("amount", amount),
	)
	s.notifier.Notify(ctx, user.Id, models.NotifyCampaignBonus,
		fmt.Sprintf("You received a %s bonus of %s", campaign.Code, models.FormatAmount(amount)), outbox.Amount(amount))

	return &ManualReward{
		UserID:     user.Id,
		ReferralID: referral.Id,
		OldBalance: entry.BalanceBefore,
		NewBalance: entry.BalanceAfter,
		Amount:     amount,
	}, nil
}

func (s *Service) findOrCreateSignup(ctx context.Context, user *models.User, campaign *models.CampaignReferral) (*models.Referral, error) {
	id := models.ReferralID(models.ReferralTypeCampaign, user.Id)

	existing, err := s.store.GetReferral(ctx, id)
	if err == nil {
		if existing.ReferralCode != campaign.Code {
			return nil, apperr.Conflict(apperr.CodeCampaignReferralInUse,
				fmt.Sprintf("User signed up with campaign %s", existing.ReferralCode))
		}
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.System("failed to read referral", err)
	}

	if _, err := s.store.GetReferral(ctx, models.ReferralID(models.ReferralTypeUser, user.Id)); err == nil {
		return nil, apperr.Conflict(apperr.CodeReferralAlreadyUsed, "User has already used a referral code")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.System("failed to read referral", err)
	}

	err = s.store.SetCampaignReferralCode(ctx, user.Id, campaign.Code)
	if errors.Is(err, storage.ErrConditionFailed) {
		return nil, apperr.Conflict(apperr.CodeCampaignReferralInUse,
			fmt.Sprintf("User signed up with campaign %s", user.CampaignReferralCode))
	}
	if err != nil {
		return nil, apperr.System("failed to record campaign code", err)
	}

	referral := &models.Referral{
		Id:           id,
		ReferrerId:   campaign.OwnerId,
		RefereeId:    user.Id,
		ReferralCode: campaign.Code,
		ReferralType: models.ReferralTypeCampaign,
		Status:       models.ReferralPending,
		RewardAmount: campaign.ReferralRewardAmount,
		RefereeRole:  user.Role,
	}
	err = s.store.CreateReferral(ctx, referral)
	if errors.Is(err, storage.ErrAlreadyExists) {
		existing, err := s.store.GetReferral(ctx, id)
		if err != nil {
			return nil, apperr.System("failed to read referral", err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, apperr.System("failed to create campaign referral", err)
	}
	return referral, nil
}
