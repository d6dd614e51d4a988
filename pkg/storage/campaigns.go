package storage

import (
	"context"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// CampaignStats are the aggregate signup counters of a campaign.
type CampaignStats struct {
	Signups    int64
	Companions int64
	Seekers    int64
}

// CampaignStore defines the interface for campaign configuration.
// Codes are expected to be normalised by the caller.
type CampaignStore interface {
	GetCampaign(ctx context.Context, code string) (*models.CampaignReferral, error)
	ListCampaigns(ctx context.Context) ([]models.CampaignReferral, error)

	// CreateCampaign returns ErrAlreadyExists if the code is taken.
	CreateCampaign(ctx context.Context, campaign *models.CampaignReferral) error

	// IncrementCampaignStats adds delta to the counters.
	IncrementCampaignStats(ctx context.Context, code string, delta CampaignStats) error

	// SetCampaignStats overwrites the counters.
	SetCampaignStats(ctx context.Context, code string, stats CampaignStats) error
}
