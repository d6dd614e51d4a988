package storage

import (
	"context"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// Posting is a ledger entry ready to be appended. Entry.Sequence must be the
// user's current tip plus one and Entry.BalanceAfter becomes the cached balance.
type Posting struct {
	Entry models.WalletTransaction
}

// SettlementStore defines the highly-privileged interface for moving money.
// A commit writes ledger entries, the users' cached balances and any status
// transitions in a single atomic operation across tables.
// It should only be exposed to the ledger service.
type SettlementStore interface {
	// CommitLedger appends the postings and applies the transitions atomically.
	// It returns ErrVersionConflict if another writer appended to one of the
	// ledgers first and ErrConditionFailed if a transition precondition fails.
	CommitLedger(ctx context.Context, postings []Posting, transitions []Transition) error
}
