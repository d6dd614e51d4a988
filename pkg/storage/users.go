package storage

import (
	"context"

	"github.com/chris/wallet-payout-engine/pkg/models"
)

// UserReader defines the interface for reading identity records.
type UserReader interface {
	// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByReferralCode retrieves the owner of a peer referral code.
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
}

// UserPatch lists the mutable profile fields. Nil fields are left untouched.
// The wallet balance only changes with a ledger commit.
type UserPatch struct {
	Name                *string
	MyReferralCode      *string
	OnboardingCompleted *bool
}

// UserStore combines reading and writing identity records.
type UserStore interface {
	UserReader

	// CreateUser creates a new user. Returns ErrAlreadyExists if the ID is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// UpdateUser applies a patch to an existing user.
	UpdateUser(ctx context.Context, userID string, patch UserPatch) error

	// SetCampaignReferralCode records the campaign a user signed up with.
	// Returns ErrConditionFailed if the user already has a different campaign code.
	SetCampaignReferralCode(ctx context.Context, userID, code string) error
}
