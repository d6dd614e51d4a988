package storage

import (
	"context"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// ReferralReader defines the interface for reading referrals.
type ReferralReader interface {
	GetReferral(ctx context.Context, id string) (*models.Referral, error)
	ListReferralsByStatus(ctx context.Context, status models.ReferralStatus) ([]models.Referral, error)
	ListReferralsByReferrer(ctx context.Context, referrerID string) ([]models.Referral, error)
	ListReferralsByCode(ctx context.Context, code string) ([]models.Referral, error)
}

// ReferralStore combines reading and creating referrals. Status changes go
// through TransitionStore or SettlementStore.
type ReferralStore interface {
	ReferralReader

	// CreateReferral creates the referral if its ID is free, otherwise it returns ErrAlreadyExists.
	CreateReferral(ctx context.Context, referral *models.Referral) error
}
