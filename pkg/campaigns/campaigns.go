// Package campaigns manages campaign referral codes: signups, reward
// distribution to campaign owners, manual rewards and signup counters.
package campaigns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

// Normalize returns the stored form of a referral or campaign code.
func Normalize(code string) string {
	return models.NormalizeCode(code)
}

// EnsureSystemCampaign returns the SYSTEM campaign, creating it with the
// fallback peer referral reward if it does not exist yet.
func EnsureSystemCampaign(ctx context.Context, store storage.CampaignStore) (*models.CampaignReferral, error) {
	c, err := store.GetCampaign(ctx, models.SystemCampaignCode)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to read SYSTEM campaign: %w", err)
	}

	c = &models.CampaignReferral{
		Code:                 models.SystemCampaignCode,
		Name:                 "Peer referral reward",
		IsActive:             true,
		ReferralRewardAmount: earnings.FallbackReferralReward,
		ReferralRewardType:   models.RewardWalletCredit,
	}
	err = store.CreateCampaign(ctx, c)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return store.GetCampaign(ctx, models.SystemCampaignCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create SYSTEM campaign: %w", err)
	}
	return c, nil
}

// Store is what the campaign service needs from the data layer.
type Store interface {
	storage.UserStore
	storage.ReferralStore
	storage.CampaignStore
	storage.TransitionStore
}

// Service handles campaign referrals.
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

// WithMetrics records distributor outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a campaign Service.
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

// CreateCampaign validates and stores a new campaign.
func (s *Service) CreateCampaign(ctx context.Context, c *models.CampaignReferral) (*models.CampaignReferral, error) {
	c.Code = Normalize(c.Code)
	if c.Code == "" {
		return nil, apperr.Validation(apperr.CodeInvalidReferralCode, "Campaign code is required")
	}
	if c.ReferralRewardAmount < 0 {
		return nil, apperr.Validation(apperr.CodeInvalidAmount, "Reward amount must not be negative")
	}
	switch c.ReferralRewardType {
	case "":
		c.ReferralRewardType = models.RewardWalletCredit
	case models.RewardNone, models.RewardWalletCredit, models.RewardDiscount:
	default:
		return nil, apperr.Validation(apperr.CodeInvalidAmount, fmt.Sprintf("Unknown reward type %s", c.ReferralRewardType))
	}
	if c.OwnerId != "" {
		if _, err := s.store.GetUser(ctx, c.OwnerId); errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(apperr.CodeReferrerNotFound, "Campaign owner not found")
		} else if err != nil {
			return nil, apperr.System("failed to read campaign owner", err)
		}
	}
	c.TotalSignups, c.TotalCompanions, c.TotalSeekers = 0, 0, 0

	err := s.store.CreateCampaign(ctx, c)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, apperr.Conflict(apperr.CodeCampaignReferralInUse, fmt.Sprintf("Campaign %s already exists", c.Code))
	}
	if err != nil {
		return nil, apperr.System("failed to create campaign", err)
	}
	s.logger.Info("campaign created", zap.String("code", c.Code), zap.Int64("reward", c.ReferralRewardAmount))
	return c, nil
}

// GetCampaign looks a campaign up by code, case-insensitively.
func (s *Service) GetCampaign(ctx context.Context, code string) (*models.CampaignReferral, error) {
	c, err := s.store.GetCampaign(ctx, Normalize(code))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeCampaignNotFound, fmt.Sprintf("Campaign %s not found", Normalize(code)))
	}
	if err != nil {
		return nil, apperr.System("failed to read campaign", err)
	}
	return c, nil
}

// ListCampaigns returns every campaign.
func (s *Service) ListCampaigns(ctx context.Context) ([]models.CampaignReferral, error) {
	list, err := s.store.ListCampaigns(ctx)
	if err != nil {
		return nil, apperr.System("failed to list campaigns", err)
	}
	return list, nil
}
