package storage

import (
	"context"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// PayoutReader defines the interface for reading withdrawal requests.
type PayoutReader interface {
	GetPayout(ctx context.Context, id string) (*models.Payout, error)

	// ListPayoutsByStatus returns payouts in the given status, oldest first.
	ListPayoutsByStatus(ctx context.Context, status models.PayoutStatus) ([]models.Payout, error)

	// ListPayoutsByCompanion returns every payout of a companion.
	ListPayoutsByCompanion(ctx context.Context, companionID string) ([]models.Payout, error)
}

// PayoutStore combines reading and creating payouts.
type PayoutStore interface {
	PayoutReader

	// CreatePayout stores a new payout. When reservation is non-nil the debit is
	// appended in the same atomic operation; ErrVersionConflict is returned if
	// the ledger moved underneath it.
	CreatePayout(ctx context.Context, payout *models.Payout, reservation *Posting) error
}
