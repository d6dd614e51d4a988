package storage

import (
	"context"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// GetLedgerTip returns the latest sequence and balance of a user's ledger.
	// A user without entries has a zero tip.
	GetLedgerTip(ctx context.Context, userID string) (*models.LedgerTip, error)

	// ListLedgerEntries returns a user's entries in sequence order.
	ListLedgerEntries(ctx context.Context, userID string) ([]models.WalletTransaction, error)

	// ListLedgerEntriesByReference returns every entry caused by the given record.
	ListLedgerEntriesByReference(ctx context.Context, referenceID string) ([]models.WalletTransaction, error)
}
