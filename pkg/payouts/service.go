// Package payouts handles companion withdrawal requests: creating them with a
// reservation debit, validating and resolving them in batches, and the admin
// completion and rejection paths.
package payouts

import (
	"context"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

const (
	// DuplicateWindow is how far back an identical payout counts as a double submit.
	DuplicateWindow = 5 * time.Minute

	// DefaultMaxAttempts is how many times a payout is deferred on read
	// failures before it is rejected.
	DefaultMaxAttempts = 3
)

// Store is what the payout service needs from the data layer.
type Store interface {
	storage.UserReader
	storage.PayoutStore
	storage.TransitionStore
}

// BalanceSource computes the withdrawable balance of a companion.
type BalanceSource interface {
	ComputeAvailableBalance(ctx context.Context, userID, excludePayoutID string) (*earnings.Breakdown, error)
}

// Service resolves payouts.
type Service struct {
	store    Store
	ledger   *ledger.Service
	balances BalanceSource
	notifier outbox.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger

	maxAttempts     int
	duplicateWindow time.Duration
	now             func() time.Time
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

// WithDuplicateWindow overrides DuplicateWindow.
func WithDuplicateWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.duplicateWindow = d
		}
	}
}

// WithMetrics records payout outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a payout Service.
func NewService(store Store, ledgerSvc *ledger.Service, balances BalanceSource, notifier outbox.Notifier, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:           store,
		ledger:          ledgerSvc,
		balances:        balances,
		notifier:        notifier,
		logger:          logger,
		maxAttempts:     DefaultMaxAttempts,
		duplicateWindow: DuplicateWindow,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
