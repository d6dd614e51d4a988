// Package ledger appends balance movements to per-user ledgers.
//
// Every append re-reads the user's tip, writes the entry at tip+1 and moves the
// cached balance in the same atomic commit. When another writer got there
// first the commit fails with storage.ErrVersionConflict and the movement is
// rebuilt against the new tip.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds how often a commit is rebuilt after a version conflict.
const DefaultMaxAttempts = 5

// Store is what the ledger service needs from the data layer.
type Store interface {
	storage.UserReader
	storage.LedgerReader
	storage.SettlementStore
}

// Movement is a signed balance change for one user.
type Movement struct {
	UserID        string
	Amount        int64
	Type          models.TransactionType
	ReferenceID   string
	ReferenceType models.ReferenceType
	Description   string
}

// Service appends movements to the ledger.
type Service struct {
	store       Store
	logger      *zap.Logger
	metrics     *metrics.Metrics
	maxAttempts int
}

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithMetrics records conflicts and moved amounts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a ledger Service.
func NewService(store Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit appends one entry per movement and applies the transitions in a single
// atomic write. It returns the written entries.
//
// storage.ErrConditionFailed from a transition is returned as is and never
// retried: the referenced record has already moved on.
func (s *Service) Commit(ctx context.Context, movements []Movement, transitions []storage.Transition) ([]models.WalletTransaction, error) {
	for attempt := 1; ; attempt++ {
		postings, err := s.buildPostings(ctx, movements)
		if err != nil {
			return nil, err
		}

		err = s.store.CommitLedger(ctx, postings, transitions)
		if err == nil {
			entries := make([]models.WalletTransaction, len(postings))
			for i, p := range postings {
				entries[i] = p.Entry
				s.metrics.RecordLedgerMovement(p.Entry.TransactionType, p.Entry.Amount)
			}
			return entries, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}

		s.metrics.RecordLedgerConflict()
		s.logger.Warn("ledger version conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Int("movements", len(movements)),
		)
		if attempt >= s.maxAttempts {
			return nil, fmt.Errorf("failed to commit ledger after %d attempts: %w", attempt, err)
		}
	}
}

// Credit is Commit for a single movement.
func (s *Service) Credit(ctx context.Context, m Movement, transitions ...storage.Transition) (*models.WalletTransaction, error) {
	entries, err := s.Commit(ctx, []Movement{m}, transitions)
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// Posting builds the posting for a movement against the current tip without
// committing it. It is used when the append has to ride along with another
// write, such as creating a payout.
func (s *Service) Posting(ctx context.Context, m Movement) (*storage.Posting, error) {
	postings, err := s.buildPostings(ctx, []Movement{m})
	if err != nil {
		return nil, err
	}
	return &postings[0], nil
}

// Tip returns the authoritative balance position of a user.
func (s *Service) Tip(ctx context.Context, userID string) (*models.LedgerTip, error) {
	tip, err := s.store.GetLedgerTip(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger tip: %w", err)
	}
	return tip, nil
}

// MaxAttempts is the number of times a conflicting commit is rebuilt.
func (s *Service) MaxAttempts() int {
	return s.maxAttempts
}

func (s *Service) buildPostings(ctx context.Context, movements []Movement) ([]storage.Posting, error) {
	postings := make([]storage.Posting, 0, len(movements))
	for _, m := range movements {
		if m.Amount == 0 {
			return nil, fmt.Errorf("refusing to append a zero %s movement for user %s", m.Type, m.UserID)
		}
		tip, err := s.store.GetLedgerTip(ctx, m.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger tip: %w", err)
		}
		postings = append(postings, storage.Posting{Entry: models.WalletTransaction{
			UserId:          m.UserID,
			Sequence:        tip.Sequence + 1,
			Id:              uuid.NewString(),
			TransactionType: m.Type,
			Amount:          m.Amount,
			BalanceBefore:   tip.Balance,
			BalanceAfter:    tip.Balance + m.Amount,
			ReferenceId:     m.ReferenceID,
			ReferenceType:   m.ReferenceType,
			Status:          models.EntryStatusCompleted,
			Description:     m.Description,
		}})
	}
	return postings, nil
}
