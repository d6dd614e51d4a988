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

// Distribution outcomes.
const (
	OutcomeRewarded  = "rewarded"
	OutcomeCompleted = "completed"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
)

// DistributionItem is the outcome for a single referral.
type DistributionItem struct {
	ReferralID string `json:"referral_id"`
	Code       string `json:"code"`
	Outcome    string `json:"outcome"`
	Amount     int64  `json:"amount,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// DistributionResult summarises a distributor run.
type DistributionResult struct {
	RewardedCount  int                `json:"rewarded_count"`
	CompletedCount int                `json:"completed_count"`
	SkippedCount   int                `json:"skipped_count"`
	ErrorCount     int                `json:"error_count"`
	Results        []DistributionItem `json:"results"`
	Errors         []string           `json:"errors"`
}

func (r *DistributionResult) add(item DistributionItem) {
	switch item.Outcome {
	case OutcomeRewarded:
		r.RewardedCount++
	case OutcomeCompleted:
		r.CompletedCount++
	case OutcomeSkipped:
		r.SkippedCount++
	case OutcomeError:
		r.ErrorCount++
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", item.ReferralID, item.Reason))
	}
	r.Results = append(r.Results, item)
}

// DistributeReferralRewards walks the pending campaign signups and rewards
// the campaign owner for every referee that finished onboarding. Referrals
// that cannot be rewarded yet stay pending; a failure on one never stops the
// batch.
func (s *Service) DistributeReferralRewards(ctx context.Context) (*DistributionResult, error) {
	pending, err := s.store.ListReferralsByStatus(ctx, models.ReferralPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending referrals: %w", err)
	}

	result := &DistributionResult{Results: []DistributionItem{}, Errors: []string{}}
	for i := range pending {
		r := &pending[i]
		if r.ReferralType != models.ReferralTypeCampaign {
			continue
		}
		if err := ctx.Err(); err != nil {
			s.logger.Warn("reward run interrupted", zap.Error(err))
			break
		}

		item := s.distributeOne(ctx, r)
		if item.Outcome == OutcomeError {
			s.logger.Warn("campaign referral not rewarded",
				zap.String("referral_id", r.Id),
				zap.String("reason", item.Reason),
			)
		}
		s.metrics.RecordCampaignReward(item.Outcome)
		result.add(item)
	}

	s.logger.Info("reward run finished",
		zap.Int("rewarded", result.RewardedCount),
		zap.Int("completed", result.CompletedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("errors", result.ErrorCount),
	)
	return result, nil
}

func (s *Service) distributeOne(ctx context.Context, r *models.Referral) DistributionItem {
	item := DistributionItem{ReferralID: r.Id, Code: r.ReferralCode}
	fail := func(reason string) DistributionItem {
		item.Outcome = OutcomeError
		item.Reason = reason
		return item
	}

	referee, err := s.store.GetUser(ctx, r.RefereeId)
	if errors.Is(err, storage.ErrNotFound) {
		return fail("Referee not found")
	}
	if err != nil {
		return fail(err.Error())
	}
	if !referee.OnboardingCompleted {
		item.Outcome = OutcomeSkipped
		item.Reason = "Referee has not completed onboarding"
		return item
	}

	campaign, err := s.GetCampaign(ctx, r.ReferralCode)
	if err != nil {
		return fail(err.Error())
	}
	if !campaign.IsActive {
		return fail(fmt.Sprintf("Campaign %s is not active", campaign.Code))
	}

	now := s.now()
	if !campaign.PaysWalletCredit() {
		err := s.store.ApplyTransition(ctx, storage.Transition{
			Entity: storage.EntityReferral,
			ID:     r.Id,
			From:   string(models.ReferralPending),
			To:     string(models.ReferralCompleted),
			Set:    map[string]interface{}{"reward_amount": int64(0)},
		})
		if errors.Is(err, storage.ErrConditionFailed) {
			item.Outcome = OutcomeSkipped
			item.Reason = "Referral already handled"
			return item
		}
		if err != nil {
			return fail(err.Error())
		}
		s.countSignup(ctx, campaign.Code, r.RefereeRole)
		item.Outcome = OutcomeCompleted
		item.Reason = "Campaign has no wallet reward"
		return item
	}

	ownerID := r.ReferrerId
	if ownerID == "" {
		ownerID = campaign.OwnerId
	}
	if ownerID == "" {
		return fail(fmt.Sprintf("Campaign %s has no owner to reward", campaign.Code))
	}

	amount := campaign.ReferralRewardAmount
	_, err = s.ledger.Credit(ctx, ledger.Movement{
		UserID:        ownerID,
		Amount:        amount,
		Type:          models.TxCampaignBonus,
		ReferenceID:   r.Id,
		ReferenceType: models.RefReferral,
		Description:   fmt.Sprintf("Campaign %s signup bonus", campaign.Code),
	}, storage.Transition{
		Entity: storage.EntityReferral,
		ID:     r.Id,
		From:   string(models.ReferralPending),
		To:     string(models.ReferralRewarded),
		Set: map[string]interface{}{
			"reward_amount": amount,
			"rewarded_at":   now,
		},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		item.Outcome = OutcomeSkipped
		item.Reason = "Referral already handled"
		return item
	}
	if err != nil {
		return fail(apperr.System("failed to credit campaign bonus", err).Error())
	}

	s.countSignup(ctx, campaign.Code, r.RefereeRole)
	s.notifier.Notify(ctx, ownerID, models.NotifyCampaignBonus,
		fmt.Sprintf("You earned %s from a %s signup", models.FormatAmount(amount), campaign.Code), outbox.Amount(amount))

	item.Outcome = OutcomeRewarded
	item.Amount = amount
	return item
}

// countSignup is best effort; RecalculateCampaignStats repairs a missed increment.
func (s *Service) countSignup(ctx context.Context, code string, role models.Role) {
	if err := s.UpdateCampaignReferralStats(ctx, code, role); err != nil {
		s.logger.Warn("failed to update campaign stats", zap.String("code", code), zap.Error(err))
	}
}
