package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

// GetPayout retrieves a payout by ID.
func (s *Store) GetPayout(ctx context.Context, id string) (*models.Payout, error) {
	var payout models.Payout
	if err := s.getItem(ctx, s.Tables.Payouts, "id", id, &payout); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return &payout, nil
}

// ListPayoutsByStatus queries the status GSI and returns the payouts oldest first.
func (s *Store) ListPayoutsByStatus(ctx context.Context, status models.PayoutStatus) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := s.queryIndexEq(ctx, s.Tables.Payouts, statusCreatedAtIndex, "status", string(status), &payouts); err != nil {
		return nil, fmt.Errorf("failed to list %s payouts: %w", status, err)
	}
	sort.SliceStable(payouts, func(i, j int) bool {
		return payouts[i].CreatedAt.Before(payouts[j].CreatedAt)
	})
	return payouts, nil
}

// ListPayoutsByCompanion returns all payouts of a companion.
func (s *Store) ListPayoutsByCompanion(ctx context.Context, companionID string) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := s.queryIndexEq(ctx, s.Tables.Payouts, companionIDIndex, "companion_id", companionID, &payouts); err != nil {
		return nil, fmt.Errorf("failed to list payouts by companion: %w", err)
	}
	return payouts, nil
}

// CreatePayout stores a new payout, together with its reservation debit when one is given.
func (s *Store) CreatePayout(ctx context.Context, payout *models.Payout, reservation *storage.Posting) error {
	now := time.Now().UTC()
	if payout.CreatedAt.IsZero() {
		payout.CreatedAt = now
	}
	payout.UpdatedAt = now

	if reservation == nil {
		if err := s.putNew(ctx, s.Tables.Payouts, "id", payout); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return err
			}
			return fmt.Errorf("failed to create payout: %w", err)
		}
		return nil
	}

	payoutAV, err := attributevalue.MarshalMap(payout)
	if err != nil {
		return fmt.Errorf("failed to marshal payout: %w", err)
	}
	postingItems, err := s.postingItems(*reservation, now)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Payouts),
				Item:                payoutAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}
	items = append(items, postingItems...)

	return s.transactWrite(ctx, items, []itemKind{kindCreate, kindLedger, kindLedger})
}
