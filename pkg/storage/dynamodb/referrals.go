package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

// GetReferral retrieves a referral by ID.
func (s *Store) GetReferral(ctx context.Context, id string) (*models.Referral, error) {
	var referral models.Referral
	if err := s.getItem(ctx, s.Tables.Referrals, "id", id, &referral); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &referral, nil
}

// CreateReferral conditionally creates a referral. The deterministic ID makes
// a second referral for the same referee fail with ErrAlreadyExists.
func (s *Store) CreateReferral(ctx context.Context, referral *models.Referral) error {
	now := time.Now().UTC()
	if referral.CreatedAt.IsZero() {
		referral.CreatedAt = now
	}
	referral.UpdatedAt = now
	if err := s.putNew(ctx, s.Tables.Referrals, "id", referral); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

// ListReferralsByStatus returns the referrals in a status, oldest first.
func (s *Store) ListReferralsByStatus(ctx context.Context, status models.ReferralStatus) ([]models.Referral, error) {
	var referrals []models.Referral
	if err := s.queryIndexEq(ctx, s.Tables.Referrals, statusCreatedAtIndex, "status", string(status), &referrals); err != nil {
		return nil, fmt.Errorf("failed to list %s referrals: %w", status, err)
	}
	sort.SliceStable(referrals, func(i, j int) bool {
		return referrals[i].CreatedAt.Before(referrals[j].CreatedAt)
	})
	return referrals, nil
}

// ListReferralsByReferrer returns the referrals credited to a referrer.
func (s *Store) ListReferralsByReferrer(ctx context.Context, referrerID string) ([]models.Referral, error) {
	var referrals []models.Referral
	if err := s.queryIndexEq(ctx, s.Tables.Referrals, referrerIDIndex, "referrer_id", referrerID, &referrals); err != nil {
		return nil, fmt.Errorf("failed to list referrals by referrer: %w", err)
	}
	return referrals, nil
}

// ListReferralsByCode returns the referrals made with a code.
func (s *Store) ListReferralsByCode(ctx context.Context, code string) ([]models.Referral, error) {
	var referrals []models.Referral
	if err := s.queryIndexEq(ctx, s.Tables.Referrals, referralCodeGSI, "referral_code", code, &referrals); err != nil {
		return nil, fmt.Errorf("failed to list referrals by code: %w", err)
	}
	return referrals, nil
}
