package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"go.uber.org/zap"
)

// RejectedByAdmin is the rejection code of payouts rejected by an operator.
const RejectedByAdmin = "admin_rejected"

// GetPayout returns a payout by id.
func (s *Service) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	p, err := s.store.GetPayout(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodePayoutNotFound, "Payout not found")
	}
	if err != nil {
		return nil, apperr.System("failed to read payout", err)
	}
	return p, nil
}

// CompletePayout marks an approved payout as sent.
func (s *Service) CompletePayout(ctx context.Context, id, adminID string) (*models.Payout, error) {
	p, err := s.GetPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PayoutApproved {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition,
			fmt.Sprintf("Cannot complete a payout in status %s", p.Status))
	}

	now := s.now()
	err = s.store.ApplyTransition(ctx, storage.Transition{
		Entity: storage.EntityPayout,
		ID:     id,
		From:   string(models.PayoutApproved),
		To:     string(models.PayoutCompleted),
		Set: map[string]interface{}{
			"processed_date": now,
			"processed_by":   adminID,
		},
	})
	if errors.Is(err, storage.ErrConditionFailed) {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Payout changed status, try again")
	}
	if err != nil {
		return nil, apperr.System("failed to complete payout", err)
	}

	p.Status = models.PayoutCompleted
	p.ProcessedDate = &now
	p.ProcessedBy = adminID

	s.metrics.RecordPayoutOutcome(string(models.PayoutCompleted), "")
	s.logger.Info("payout completed", zap.String("payout_id", id), zap.String("admin_id", adminID))
	s.notifier.Notify(ctx, p.CompanionId, models.NotifyPayoutCompleted,
		fmt.Sprintf("Your payout of %s has been sent", models.FormatAmount(p.Amount)), outbox.Amount(p.Amount))
	return p, nil
}

// AdminRejectPayout rejects a pending or approved payout and refunds it if it
// reserved funds.
func (s *Service) AdminRejectPayout(ctx context.Context, id, adminID, reason string) (*models.Payout, error) {
	p, err := s.GetPayout(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PayoutPending && p.Status != models.PayoutApproved {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition,
			fmt.Sprintf("Cannot reject a payout in status %s", p.Status))
	}
	if reason == "" {
		reason = "Rejected by admin"
	}

	err = s.reject(ctx, p, p.Status, nil, reason, RejectedByAdmin, adminID)
	if errors.Is(err, storage.ErrConditionFailed) {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Payout changed status, try again")
	}
	if err != nil {
		return nil, apperr.System("failed to reject payout", err)
	}

	s.metrics.RecordPayoutOutcome(StatusRejected, RejectedByAdmin)
	return s.GetPayout(ctx, id)
}

// ReleaseStaleClaims returns payouts claimed longer than olderThan ago to
// pending. Each release counts as an attempt.
func (s *Service) ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int, error) {
	claimed, err := s.store.ListPayoutsByStatus(ctx, models.PayoutProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to list processing payouts: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	released := 0
	for i := range claimed {
		p := &claimed[i]
		if p.ClaimId == "" || p.ClaimedAt == nil || p.ClaimedAt.After(cutoff) {
			continue
		}
		err := s.release(ctx, p, true)
		if errors.Is(err, storage.ErrConditionFailed) || errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			s.logger.Error("failed to release stale claim", zap.String("payout_id", p.Id), zap.Error(err))
			continue
		}
		s.logger.Info("released stale payout claim",
			zap.String("payout_id", p.Id),
			zap.Time("claimed_at", *p.ClaimedAt),
		)
		released++
	}
	return released, nil
}

// RetryPendingRefunds refunds rejected payouts whose refund could not be
// committed with the rejection.
func (s *Service) RetryPendingRefunds(ctx context.Context) (int, error) {
	rejected, err := s.store.ListPayoutsByStatus(ctx, models.PayoutRejected)
	if err != nil {
		return 0, fmt.Errorf("failed to list rejected payouts: %w", err)
	}

	refunded := 0
	for i := range rejected {
		p := &rejected[i]
		if !p.RefundPending {
			continue
		}
		err := s.RetryRefund(ctx, p)
		if errors.Is(err, storage.ErrConditionFailed) {
			continue
		}
		if err != nil {
			s.logger.Error("refund retry failed", zap.String("payout_id", p.Id), zap.Error(err))
			continue
		}
		refunded++
	}
	return refunded, nil
}

// RetryRefund appends the refund of a rejected payout and clears its
// refund_pending flag in one commit. The flag guards against refunding twice.
func (s *Service) RetryRefund(ctx context.Context, p *models.Payout) error {
	_, err := s.ledger.Credit(ctx, refundMovement(p), storage.Transition{
		Entity: storage.EntityPayout,
		ID:     p.Id,
		From:   string(models.PayoutRejected),
		Match:  map[string]interface{}{"refund_pending": true},
		Remove: []string{"refund_pending"},
	})
	if err != nil {
		return err
	}
	s.logger.Info("pending refund committed", zap.String("payout_id", p.Id), zap.Int64("amount", p.WithdrawnAmount()))
	s.notifyRefund(ctx, p)
	return nil
}
