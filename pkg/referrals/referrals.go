// Package referrals applies peer referral codes. A referee can use at most one
// code, and the reward is credited to both sides exactly once.
package referrals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

// Store is what the referral processor needs from the data layer.
type Store interface {
	storage.UserReader
	storage.ReferralStore
	storage.CampaignStore
	storage.TransitionStore
}

// Outcome is the result of applying a referral code.
type Outcome struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	ReferralID       string `json:"referral_id,omitempty"`
	ReferrerID       string `json:"referrer_id,omitempty"`
	RewardAmount     int64  `json:"reward_amount"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
}

// Service processes peer referrals.
type Service struct {
	store    Store
	ledger   *ledger.Service
	notifier outbox.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records referral outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a referral Service.
func NewService(store Store, ledgerSvc *ledger.Service, notifier outbox.Notifier, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		ledger:   ledgerSvc,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessReferral applies a peer referral code for actorID. Applying the same
// code again is a success that reports the existing reward; if the earlier
// attempt stopped before crediting, the credit is completed now.
func (s *Service) ProcessReferral(ctx context.Context, actorID, rawCode string) (*Outcome, error) {
	out, err := s.processReferral(ctx, actorID, rawCode)
	switch {
	case err != nil:
		s.metrics.RecordReferralOutcome(apperr.CodeOf(err))
	case out.AlreadyProcessed:
		s.metrics.RecordReferralOutcome("already_processed")
	case out.ReferralID != "":
		s.metrics.RecordReferralOutcome("rewarded")
	}
	return out, err
}

func (s *Service) processReferral(ctx context.Context, actorID, rawCode string) (*Outcome, error) {
	code := campaigns.Normalize(rawCode)
	if code == "" {
		return &Outcome{Success: true, Message: "No referral code provided"}, nil
	}

	actor, err := s.store.GetUser(ctx, actorID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.System("failed to read user", err)
	}
	if actor.CampaignReferralCode != "" {
		return nil, apperr.Conflict(apperr.CodeCampaignReferralInUse,
			"You signed up with a campaign code and cannot use a referral code")
	}

	referrer, err := s.store.GetUserByReferralCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Validation(apperr.CodeInvalidReferralCode, "Invalid referral code")
	}
	if err != nil {
		return nil, apperr.System("failed to look up referral code", err)
	}
	if referrer.Id == actor.Id {
		return nil, apperr.Validation(apperr.CodeSelfReferral, "Cannot use your own referral code")
	}

	id := models.ReferralID(models.ReferralTypeUser, actor.Id)
	existing, err := s.store.GetReferral(ctx, id)
	if err == nil {
		return s.resume(ctx, existing, referrer.Id, code)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.System("failed to read referral", err)
	}

	system, err := campaigns.EnsureSystemCampaign(ctx, s.store)
	if err != nil {
		return nil, apperr.System("failed to read referral reward", err)
	}

	referral := &models.Referral{
		Id:           id,
		ReferrerId:   referrer.Id,
		RefereeId:    actor.Id,
		ReferralCode: code,
		ReferralType: models.ReferralTypeUser,
		Status:       models.ReferralCompleted,
		RewardAmount: system.ReferralRewardAmount,
		RefereeRole:  actor.Role,
	}
	err = s.store.CreateReferral(ctx, referral)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// lost a race with another request from the same referee
		existing, err := s.store.GetReferral(ctx, id)
		if err != nil {
			return nil, apperr.System("failed to read referral", err)
		}
		return s.resume(ctx, existing, referrer.Id, code)
	}
	if err != nil {
		return nil, apperr.System("failed to create referral", err)
	}

	s.logger.Info("referral created",
		zap.String("referral_id", id),
		zap.String("referrer_id", referrer.Id),
		zap.String("referee_id", actor.Id),
		zap.Int64("reward", referral.RewardAmount),
	)

	credited, err := s.Credit(ctx, referral)
	if err != nil {
		return nil, err
	}
	if !credited {
		return s.alreadyProcessed(referral), nil
	}
	return &Outcome{
		Success:      true,
		Message:      "Referral applied",
		ReferralID:   referral.Id,
		ReferrerID:   referral.ReferrerId,
		RewardAmount: referral.RewardAmount,
	}, nil
}

// resume handles a referee that already has a referral. The same referral
// again is idempotent; anything else is a second code.
func (s *Service) resume(ctx context.Context, existing *models.Referral, referrerID, code string) (*Outcome, error) {
	if existing.ReferrerId != referrerID || existing.ReferralCode != code {
		return nil, apperr.Conflict(apperr.CodeReferralAlreadyUsed, "You have already used a referral code")
	}
	if existing.Status == models.ReferralCompleted {
		s.logger.Info("resuming referral credit", zap.String("referral_id", existing.Id))
		if _, err := s.Credit(ctx, existing); err != nil {
			return nil, err
		}
	}
	return s.alreadyProcessed(existing), nil
}

func (s *Service) alreadyProcessed(r *models.Referral) *Outcome {
	return &Outcome{
		Success:          true,
		Message:          "Referral already processed",
		ReferralID:       r.Id,
		ReferrerID:       r.ReferrerId,
		RewardAmount:     r.RewardAmount,
		AlreadyProcessed: true,
	}
}

// Credit pays a completed peer referral: one referral_bonus entry for each
// party and completed -> rewarded in a single commit. It reports false when
// the referral had already been rewarded by someone else.
func (s *Service) Credit(ctx context.Context, r *models.Referral) (bool, error) {
	rewarded := storage.Transition{
		Entity: storage.EntityReferral,
		ID:     r.Id,
		From:   string(models.ReferralCompleted),
		To:     string(models.ReferralRewarded),
		Set:    map[string]interface{}{"rewarded_at": s.now()},
		Remove: []string{"needs_review", "last_error"},
	}

	var err error
	if r.RewardAmount > 0 {
		_, err = s.ledger.Commit(ctx, []ledger.Movement{
			bonus(r.ReferrerId, r, "Referral bonus for inviting a friend"),
			bonus(r.RefereeId, r, "Referral bonus for joining with a code"),
		}, []storage.Transition{rewarded})
	} else {
		err = s.store.ApplyTransition(ctx, rewarded)
	}
	if errors.Is(err, storage.ErrConditionFailed) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("failed to credit referral, left for reconciliation",
			zap.String("referral_id", r.Id),
			zap.Error(err),
		)
		return false, apperr.System("failed to credit referral", err)
	}

	if r.RewardAmount > 0 {
		msg := fmt.Sprintf("You earned a %s referral bonus", models.FormatAmount(r.RewardAmount))
		s.notifier.Notify(ctx, r.ReferrerId, models.NotifyReferralBonus, msg, outbox.Amount(r.RewardAmount))
		s.notifier.Notify(ctx, r.RefereeId, models.NotifyReferralBonus, msg, outbox.Amount(r.RewardAmount))
	}
	s.logger.Info("referral rewarded", zap.String("referral_id", r.Id), zap.Int64("reward", r.RewardAmount))
	return true, nil
}

// FlagForReview marks a completed referral whose credit keeps failing.
func (s *Service) FlagForReview(ctx context.Context, r *models.Referral, cause error) error {
	return s.store.ApplyTransition(ctx, storage.Transition{
		Entity: storage.EntityReferral,
		ID:     r.Id,
		From:   string(models.ReferralCompleted),
		Set: map[string]interface{}{
			"needs_review": true,
			"last_error":   cause.Error(),
		},
	})
}

func bonus(userID string, r *models.Referral, description string) ledger.Movement {
	return ledger.Movement{
		UserID:        userID,
		Amount:        r.RewardAmount,
		Type:          models.TxReferralBonus,
		ReferenceID:   r.Id,
		ReferenceType: models.RefReferral,
		Description:   description,
	}
}
