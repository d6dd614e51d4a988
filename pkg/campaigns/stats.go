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

// StatsResult shows the counters of one campaign before and after a recount.
type StatsResult struct {
	Code    string                `json:"code"`
	Before  storage.CampaignStats `json:"before"`
	After   storage.CampaignStats `json:"after"`
	Changed bool                  `json:"changed"`
}

// UpdateCampaignReferralStats counts one qualified signup. Concurrent calls
// never lose an increment; RecalculateCampaignStats repairs any drift.
func (s *Service) UpdateCampaignReferralStats(ctx context.Context, code string, role models.Role) error {
	err := s.store.IncrementCampaignStats(ctx, Normalize(code), roleDelta(role))
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(apperr.CodeCampaignNotFound, fmt.Sprintf("Campaign %s not found", Normalize(code)))
	}
	if err != nil {
		return apperr.System("failed to update campaign stats", err)
	}
	return nil
}

// RecalculateCampaignStats recounts the qualified signups of one campaign, or
// of every campaign when code is empty, and overwrites the counters.
func (s *Service) RecalculateCampaignStats(ctx context.Context, code string) ([]StatsResult, error) {
	var list []models.CampaignReferral
	if code != "" {
		c, err := s.GetCampaign(ctx, code)
		if err != nil {
			return nil, err
		}
		list = []models.CampaignReferral{*c}
	} else {
		all, err := s.ListCampaigns(ctx)
		if err != nil {
			return nil, err
		}
		list = all
	}

	results := make([]StatsResult, 0, len(list))
	for i := range list {
		c := &list[i]
		if c.Code == models.SystemCampaignCode {
			continue
		}

		referrals, err := s.store.ListReferralsByCode(ctx, c.Code)
		if err != nil {
			return results, apperr.System(fmt.Sprintf("failed to list referrals of %s", c.Code), err)
		}
		after := countSignups(referrals)
		before := storage.CampaignStats{Signups: c.TotalSignups, Companions: c.TotalCompanions, Seekers: c.TotalSeekers}

		res := StatsResult{Code: c.Code, Before: before, After: after, Changed: before != after}
		if res.Changed {
			if err := s.store.SetCampaignStats(ctx, c.Code, after); err != nil {
				return results, apperr.System(fmt.Sprintf("failed to store stats of %s", c.Code), err)
			}
			s.logger.Info("campaign stats corrected",
				zap.String("code", c.Code),
				zap.Int64("signups_before", before.Signups),
				zap.Int64("signups_after", after.Signups),
			)
		}
		results = append(results, res)
	}
	return results, nil
}

func countSignups(referrals []models.Referral) storage.CampaignStats {
	var stats storage.CampaignStats
	for _, r := range referrals {
		if r.ReferralType != models.ReferralTypeCampaign {
			continue
		}
		if r.Status != models.ReferralCompleted && r.Status != models.ReferralRewarded {
			continue
		}
		d := roleDelta(r.RefereeRole)
		stats.Signups += d.Signups
		stats.Companions += d.Companions
		stats.Seekers += d.Seekers
	}
	return stats
}

func roleDelta(role models.Role) storage.CampaignStats {
	d := storage.CampaignStats{Signups: 1}
	switch role {
	case models.RoleCompanion:
		d.Companions = 1
	case models.RoleSeeker:
		d.Seekers = 1
	}
	return d
}
