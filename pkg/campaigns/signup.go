package campaigns

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

// RegisterCampaignSignup records that a user signed up with a campaign code.
// It stores the code on the user and creates the pending campaign_signup
// referral the distributor rewards later. Registering the same code twice
// returns the existing referral.
func (s *Service) RegisterCampaignSignup(ctx context.Context, userID, rawCode string) (*models.Referral, error) {
	code := Normalize(rawCode)
	if code == "" || code == models.SystemCampaignCode {
		return nil, apperr.Validation(apperr.CodeInvalidReferralCode, "Invalid campaign code")
	}

	campaign, err := s.GetCampaign(ctx, code)
	if err != nil {
		return nil, err
	}
	if !campaign.IsActive {
		return nil, apperr.InactiveCampaign(fmt.Sprintf("Campaign %s is not active", code))
	}

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.System("failed to read user", err)
	}

	if _, err := s.store.GetReferral(ctx, models.ReferralID(models.ReferralTypeUser, userID)); err == nil {
		return nil, apperr.Conflict(apperr.CodeReferralAlreadyUsed, "You have already used a referral code")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.System("failed to read referral", err)
	}

	err = s.store.SetCampaignReferralCode(ctx, userID, code)
	if errors.Is(err, storage.ErrConditionFailed) {
		return nil, apperr.Conflict(apperr.CodeCampaignReferralInUse,
			fmt.Sprintf("You have already signed up with campaign %s", user.CampaignReferralCode))
	}
	if err != nil {
		return nil, apperr.System("failed to record campaign code", err)
	}

	referral := &models.Referral{
		Id:           models.ReferralID(models.ReferralTypeCampaign, userID),
		ReferrerId:   campaign.OwnerId,
		RefereeId:    userID,
		ReferralCode: code,
		ReferralType: models.ReferralTypeCampaign,
		Status:       models.ReferralPending,
		RewardAmount: campaign.ReferralRewardAmount,
		RefereeRole:  user.Role,
	}
	err = s.store.CreateReferral(ctx, referral)
	if errors.Is(err, storage.ErrAlreadyExists) {
		existing, err := s.store.GetReferral(ctx, referral.Id)
		if err != nil {
			return nil, apperr.System("failed to read referral", err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, apperr.System("failed to create campaign referral", err)
	}

	s.logger.Info("campaign signup registered",
		zap.String("user_id", userID),
		zap.String("code", code),
		zap.String("role", string(user.Role)),
	)
	return referral, nil
}
