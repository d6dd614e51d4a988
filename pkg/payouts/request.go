package payouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request is a companion's withdrawal request. Amount is the pre-fee amount
// taken from the wallet; the companion receives Amount - Fee.
type Request struct {
	CompanionID string
	Amount      int64
	Fee         int64
	Method      models.PaymentMethod
	Details     models.PaymentDetails
}

// RequestPayout creates a pending payout. The requested amount is debited
// from the wallet in the same write unless an identical request is already
// in flight, in which case the payout is stored unreserved and the validator
// rejects it as a duplicate.
func (s *Service) RequestPayout(ctx context.Context, req Request) (*models.Payout, error) {
	if req.Amount <= 0 {
		return nil, apperr.Validation(apperr.CodeInvalidAmount, "Payout amount must be positive")
	}
	if req.Fee < 0 || req.Fee >= req.Amount {
		return nil, apperr.Validation(apperr.CodeInvalidAmount, "Platform fee must be smaller than the requested amount")
	}

	user, err := s.store.GetUser(ctx, req.CompanionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.System("failed to read user", err)
	}
	if user.Role != models.RoleCompanion {
		return nil, apperr.Validation(apperr.CodeNotCompanion, "Only companions can request payouts")
	}

	now := s.now()
	payout := &models.Payout{
		Id:              uuid.NewString(),
		CompanionId:     req.CompanionID,
		RequestedAmount: req.Amount,
		Amount:          req.Amount - req.Fee,
		Status:          models.PayoutPending,
		PaymentMethod:   req.Method,
		PaymentDetails:  req.Details,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	existing, err := s.store.ListPayoutsByCompanion(ctx, req.CompanionID)
	if err != nil {
		return nil, apperr.System("failed to read payouts", err)
	}
	if findEarlierDuplicate(payout, existing, s.duplicateWindow) != nil {
		s.logger.Warn("possible double submit, storing payout unreserved",
			zap.String("payout_id", payout.Id),
			zap.String("companion_id", req.CompanionID),
			zap.Int64("amount", payout.Amount),
		)
		if err := s.store.CreatePayout(ctx, payout, nil); err != nil {
			return nil, apperr.System("failed to create payout", err)
		}
		return payout, nil
	}

	payout.Reserved = true
	if err := s.createReserved(ctx, payout); err != nil {
		return nil, err
	}

	s.logger.Info("payout requested",
		zap.String("payout_id", payout.Id),
		zap.String("companion_id", req.CompanionID),
		zap.Int64("requested_amount", payout.RequestedAmount),
		zap.Int64("amount", payout.Amount),
	)
	return payout, nil
}

func (s *Service) createReserved(ctx context.Context, payout *models.Payout) error {
	debit := ledger.Movement{
		UserID:        payout.CompanionId,
		Amount:        -payout.WithdrawnAmount(),
		Type:          models.TxPayout,
		ReferenceID:   payout.Id,
		ReferenceType: models.RefPayout,
		Description:   fmt.Sprintf("Payout request of %s", models.FormatAmount(payout.WithdrawnAmount())),
	}

	var err error
	for attempt := 1; attempt <= s.ledger.MaxAttempts(); attempt++ {
		var posting *storage.Posting
		posting, err = s.ledger.Posting(ctx, debit)
		if err != nil {
			return apperr.System("failed to reserve payout funds", err)
		}
		err = s.store.CreatePayout(ctx, payout, posting)
		if !errors.Is(err, storage.ErrVersionConflict) {
			break
		}
		s.logger.Warn("ledger moved while reserving payout, retrying",
			zap.String("payout_id", payout.Id),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return apperr.System("failed to create payout", err)
	}
	return nil
}
