package ledger

import (
	"context"
	"fmt"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// ChainReport is the result of replaying a user's ledger.
type ChainReport struct {
	UserID        string   `json:"user_id"`
	Entries       int      `json:"entries"`
	TipSequence   int64    `json:"tip_sequence"`
	TipBalance    int64    `json:"tip_balance"`
	CachedBalance int64    `json:"cached_balance"`
	Valid         bool     `json:"valid"`
	Problems      []string `json:"problems,omitempty"`
}

// VerifyChain replays the ledger of a user and checks that sequences are
// contiguous from 1, that each entry starts where the previous one ended and
// that the cached wallet balance matches the tip.
func (s *Service) VerifyChain(ctx context.Context, userID string) (*ChainReport, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	entries, err := s.store.ListLedgerEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	report := &ChainReport{
		UserID:        userID,
		Entries:       len(entries),
		CachedBalance: user.WalletBalance,
	}
	report.Problems = checkChain(entries)

	if n := len(entries); n > 0 {
		report.TipSequence = entries[n-1].Sequence
		report.TipBalance = entries[n-1].BalanceAfter
	}
	if report.TipBalance != user.WalletBalance {
		report.Problems = append(report.Problems, fmt.Sprintf("cached balance %d differs from tip balance %d", user.WalletBalance, report.TipBalance))
	}
	if report.TipSequence != user.LedgerVersion {
		report.Problems = append(report.Problems, fmt.Sprintf("cached ledger version %d differs from tip sequence %d", user.LedgerVersion, report.TipSequence))
	}
	report.Valid = len(report.Problems) == 0
	return report, nil
}

func checkChain(entries []models.WalletTransaction) []string {
	var problems []string
	var prev *models.WalletTransaction
	for i := range entries {
		e := &entries[i]
		if want := int64(i + 1); e.Sequence != want {
			problems = append(problems, fmt.Sprintf("entry %s has sequence %d, expected %d", e.Id, e.Sequence, want))
		}
		if e.BalanceAfter != e.BalanceBefore+e.Amount {
			problems = append(problems, fmt.Sprintf("entry %d: balance_after %d != balance_before %d + amount %d", e.Sequence, e.BalanceAfter, e.BalanceBefore, e.Amount))
		}
		if prev == nil && e.BalanceBefore != 0 {
			problems = append(problems, fmt.Sprintf("entry %d: first entry starts at %d", e.Sequence, e.BalanceBefore))
		}
		if prev != nil && e.BalanceBefore != prev.BalanceAfter {
			problems = append(problems, fmt.Sprintf("entry %d: balance_before %d != previous balance_after %d", e.Sequence, e.BalanceBefore, prev.BalanceAfter))
		}
		prev = e
	}
	return problems
}
