package payouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/outbox"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome statuses reported per payout.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusSkipped  = "skipped"
	StatusDeferred = "deferred"
	StatusFailed   = "failed"
)

// Result is the outcome for a single payout.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code,omitempty"`
}

// BatchResult is the outcome of a validator run. Processed counts the
// payouts that reached approved or rejected.
type BatchResult struct {
	Processed int      `json:"processed"`
	Results   []Result `json:"results"`
}

// ProcessPayouts validates every pending payout, oldest first, and approves or
// rejects it. A failure on one payout never stops the batch.
func (s *Service) ProcessPayouts(ctx context.Context) (*BatchResult, error) {
	pending, err := s.store.ListPayoutsByStatus(ctx, models.PayoutPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payouts: %w", err)
	}

	batch := &BatchResult{Results: make([]Result, 0, len(pending))}
	approvedThisRun := map[string]bool{}

	for i := range pending {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("payout run interrupted", zap.Error(err), zap.Int("remaining", len(pending)-i))
			break
		}

		res := s.processOne(ctx, &pending[i], approvedThisRun)
		if res.Status == StatusApproved || res.Status == StatusRejected {
			batch.Processed++
		}
		s.metrics.RecordPayoutOutcome(res.Status, res.Code)
		batch.Results = append(batch.Results, res)
	}

	s.logger.Info("payout run finished",
		zap.Int("pending", len(pending)),
		zap.Int("processed", batch.Processed),
	)
	return batch, nil
}

func (s *Service) processOne(ctx context.Context, p *models.Payout, approvedThisRun map[string]bool) (res Result) {
	claimID := uuid.NewString()
	now := s.now()
	err := s.store.ApplyTransition(ctx, storage.Transition{
		Entity: storage.EntityPayout,
		ID:     p.Id,
		From:   string(models.PayoutPending),
		To:     string(models.PayoutProcessing),
		Set:    map[string]interface{}{"claim_id": claimID, "claimed_at": now},
	})
	if errors.Is(err, storage.ErrConditionFailed) || errors.Is(err, storage.ErrNotFound) {
		return Result{ID: p.Id, Status: StatusSkipped, Reason: "Payout already claimed"}
	}
	if err != nil {
		s.logger.Error("failed to claim payout", zap.String("payout_id", p.Id), zap.Error(err))
		return Result{ID: p.Id, Status: StatusFailed, Reason: err.Error(), Code: apperr.CodeSystemError}
	}
	p.Status = models.PayoutProcessing
	p.ClaimId = claimID
	p.ClaimedAt = &now

	log := s.logger.With(zap.String("payout_id", p.Id), zap.String("companion_id", p.CompanionId))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing payout", zap.Any("panic", r), zap.Stack("stack"))
			res = s.rejectClaimed(ctx, p, fmt.Sprintf("Payout processing failed: %v", r), apperr.CodeSystemError)
		}
	}()

	// Attempts also grows when reconciliation releases a claim whose worker died.
	if p.Attempts >= s.maxAttempts {
		log.Error("payout exceeded processing attempts", zap.Int("attempts", p.Attempts))
		reason := fmt.Sprintf("Payout could not be processed after %d attempts", p.Attempts)
		return s.rejectClaimed(ctx, p, reason, apperr.CodeSystemError)
	}

	if approvedThisRun[p.CompanionId] {
		if err := s.release(ctx, p, false); err != nil {
			log.Error("failed to release claim", zap.Error(err))
		}
		return Result{ID: p.Id, Status: StatusSkipped, Reason: "Companion already has a payout approved in this run"}
	}

	breakdown, err := s.balances.ComputeAvailableBalance(ctx, p.CompanionId, p.Id)
	if err != nil {
		return s.deferOrFail(ctx, p, err)
	}
	if p.WithdrawnAmount() > breakdown.Available {
		reason := fmt.Sprintf("Insufficient balance: available %s, requested %s",
			models.FormatAmount(breakdown.Available), models.FormatAmount(p.WithdrawnAmount()))
		return s.rejectClaimed(ctx, p, reason, apperr.CodeInsufficientBalance)
	}

	others, err := s.store.ListPayoutsByCompanion(ctx, p.CompanionId)
	if err != nil {
		return s.deferOrFail(ctx, p, err)
	}
	if dup := findEarlierDuplicate(p, others, s.duplicateWindow); dup != nil {
		log.Info("duplicate payout", zap.String("original_id", dup.Id))
		return s.rejectClaimed(ctx, p, "Duplicate payout request", apperr.CodeDuplicatePayout)
	}

	if err := ValidatePaymentDetails(p.PaymentMethod, p.PaymentDetails); err != nil {
		return s.rejectClaimed(ctx, p, err.Error(), apperr.CodeOf(err))
	}

	err = s.approve(ctx, p)
	if errors.Is(err, storage.ErrConditionFailed) || errors.Is(err, storage.ErrNotFound) {
		log.Warn("claim lost before approval")
		return Result{ID: p.Id, Status: StatusSkipped, Reason: "Payout claim was released"}
	}
	if err != nil {
		log.Error("failed to approve payout", zap.Error(err))
		return s.rejectClaimed(ctx, p, err.Error(), apperr.CodeSystemError)
	}

	approvedThisRun[p.CompanionId] = true
	s.notifier.Notify(ctx, p.CompanionId, models.NotifyPayoutApproved,
		fmt.Sprintf("Your payout of %s has been approved", models.FormatAmount(p.Amount)), outbox.Amount(p.Amount))
	log.Info("payout approved", zap.Int64("amount", p.Amount))
	return Result{ID: p.Id, Status: StatusApproved}
}

// approve moves a claimed payout to approved. A payout stored without a
// reservation has its debit appended in the same commit.
func (s *Service) approve(ctx context.Context, p *models.Payout) error {
	now := s.now()
	t := storage.Transition{
		Entity: storage.EntityPayout,
		ID:     p.Id,
		From:   string(models.PayoutProcessing),
		To:     string(models.PayoutApproved),
		Match:  map[string]interface{}{"claim_id": p.ClaimId},
		Set: map[string]interface{}{
			"processed_date": now,
			"processed_by":   models.ProcessedBySystem,
		},
		Remove: []string{"claim_id", "claimed_at"},
	}

	if p.Reserved {
		return s.store.ApplyTransition(ctx, t)
	}

	t.Set["reserved"] = true
	_, err := s.ledger.Credit(ctx, ledger.Movement{
		UserID:        p.CompanionId,
		Amount:        -p.WithdrawnAmount(),
		Type:          models.TxPayout,
		ReferenceID:   p.Id,
		ReferenceType: models.RefPayout,
		Description:   fmt.Sprintf("Payout of %s", models.FormatAmount(p.WithdrawnAmount())),
	}, t)
	return err
}

// deferOrFail hands a payout whose balance could not be verified back to
// pending, or rejects it once it has used up its attempts.
func (s *Service) deferOrFail(ctx context.Context, p *models.Payout, cause error) Result {
	log := s.logger.With(zap.String("payout_id", p.Id), zap.Int("attempts", p.Attempts+1))

	if p.Attempts+1 >= s.maxAttempts {
		log.Error("balance could not be verified, giving up", zap.Error(cause))
		reason := fmt.Sprintf("Balance could not be verified after %d attempts: %v", p.Attempts+1, cause)
		return s.rejectClaimed(ctx, p, reason, apperr.CodeSystemError)
	}

	log.Warn("balance could not be verified, deferring", zap.Error(cause))
	if err := s.release(ctx, p, true); err != nil {
		log.Error("failed to release claim", zap.Error(err))
	}
	return Result{ID: p.Id, Status: StatusDeferred, Reason: cause.Error(), Code: apperr.CodeSystemError}
}

// release returns a claimed payout to pending.
func (s *Service) release(ctx context.Context, p *models.Payout, countAttempt bool) error {
	t := storage.Transition{
		Entity: storage.EntityPayout,
		ID:     p.Id,
		From:   string(models.PayoutProcessing),
		To:     string(models.PayoutPending),
		Match:  map[string]interface{}{"claim_id": p.ClaimId},
		Remove: []string{"claim_id", "claimed_at"},
	}
	if countAttempt {
		t.Add = map[string]int64{"attempts": 1}
	}
	return s.store.ApplyTransition(ctx, t)
}

func (s *Service) rejectClaimed(ctx context.Context, p *models.Payout, reason, code string) Result {
	match := map[string]interface{}{"claim_id": p.ClaimId}
	err := s.reject(ctx, p, models.PayoutProcessing, match, reason, code, models.ProcessedBySystem)
	if errors.Is(err, storage.ErrConditionFailed) || errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("claim lost before rejection", zap.String("payout_id", p.Id))
		return Result{ID: p.Id, Status: StatusSkipped, Reason: "Payout claim was released"}
	}
	if err != nil {
		s.logger.Error("failed to reject payout", zap.String("payout_id", p.Id), zap.Error(err))
		return Result{ID: p.Id, Status: StatusFailed, Reason: err.Error(), Code: apperr.CodeSystemError}
	}
	return Result{ID: p.Id, Status: StatusRejected, Reason: reason, Code: code}
}

// reject moves a payout from the given status to rejected. Reserved funds are
// refunded in the same commit; if that commit fails for any reason other than
// the payout having moved on, the payout is still rejected and flagged
// refund_pending for reconciliation.
func (s *Service) reject(ctx context.Context, p *models.Payout, from models.PayoutStatus, match map[string]interface{}, reason, code, by string) error {
	t := storage.Transition{
		Entity: storage.EntityPayout,
		ID:     p.Id,
		From:   string(from),
		To:     string(models.PayoutRejected),
		Match:  match,
		Set: map[string]interface{}{
			"rejection_reason": reason,
			"rejection_code":   code,
			"processed_date":   s.now(),
			"processed_by":     by,
		},
		Remove: []string{"claim_id", "claimed_at"},
	}

	refunded := false
	if p.Reserved {
		_, err := s.ledger.Credit(ctx, refundMovement(p), t)
		switch {
		case err == nil:
			refunded = true
		case errors.Is(err, storage.ErrConditionFailed) || errors.Is(err, storage.ErrNotFound):
			return err
		default:
			s.logger.Error("refund failed, rejecting with refund pending",
				zap.String("payout_id", p.Id),
				zap.Error(err),
			)
			t.Set["refund_pending"] = true
			if err := s.store.ApplyTransition(ctx, t); err != nil {
				return err
			}
		}
	} else if err := s.store.ApplyTransition(ctx, t); err != nil {
		return err
	}

	s.logger.Info("payout rejected",
		zap.String("payout_id", p.Id),
		zap.String("code", code),
		zap.Bool("refunded", refunded),
	)
	s.notifier.Notify(ctx, p.CompanionId, models.NotifyPayoutRejected,
		fmt.Sprintf("Your payout of %s was rejected: %s", models.FormatAmount(p.Amount), reason), outbox.Amount(p.Amount))
	if refunded {
		s.notifyRefund(ctx, p)
	}
	return nil
}

func refundMovement(p *models.Payout) ledger.Movement {
	return ledger.Movement{
		UserID:        p.CompanionId,
		Amount:        p.WithdrawnAmount(),
		Type:          models.TxRefund,
		ReferenceID:   p.Id,
		ReferenceType: models.RefPayout,
		Description:   fmt.Sprintf("Refund for rejected payout of %s", models.FormatAmount(p.WithdrawnAmount())),
	}
}

func (s *Service) notifyRefund(ctx context.Context, p *models.Payout) {
	s.notifier.Notify(ctx, p.CompanionId, models.NotifyRefund,
		fmt.Sprintf("%s has been returned to your wallet", models.FormatAmount(p.WithdrawnAmount())), outbox.Amount(p.WithdrawnAmount()))
}
