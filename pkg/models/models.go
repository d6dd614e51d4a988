package models

import (
	"strings"
	"time"
)

// Role is the platform role of a user.
type Role string

const (
	RoleCompanion Role = "companion"
	RoleSeeker    Role = "seeker"
	RoleAdmin     Role = "admin"
)

// User is the identity record as seen by the wallet engine.
// WalletBalance and LedgerVersion mirror the ledger tip and are only written
// together with a ledger append.
type User struct {
	Id                   string    `json:"id" dynamodbav:"id"`
	Email                string    `json:"email" dynamodbav:"email"`
	Name                 string    `json:"name" dynamodbav:"name"`
	Role                 Role      `json:"role" dynamodbav:"role"`
	MyReferralCode       string    `json:"my_referral_code,omitempty" dynamodbav:"my_referral_code,omitempty"`
	CampaignReferralCode string    `json:"campaign_referral_code,omitempty" dynamodbav:"campaign_referral_code,omitempty"`
	OnboardingCompleted  bool      `json:"onboarding_completed" dynamodbav:"onboarding_completed"`
	WalletBalance        int64     `json:"wallet_balance" dynamodbav:"wallet_balance"`
	LedgerVersion        int64     `json:"ledger_version" dynamodbav:"ledger_version"`
	CreatedAt            time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TxReferralBonus TransactionType = "referral_bonus"
	TxCampaignBonus TransactionType = "campaign_bonus"
	TxPayout        TransactionType = "payout"
	TxRefund        TransactionType = "refund"
)

// ReferenceType names the record that caused a ledger entry.
type ReferenceType string

const (
	RefReferral ReferenceType = "referral"
	RefPayout   ReferenceType = "payout"
)

const EntryStatusCompleted = "completed"

// WalletTransaction is a single append-only ledger entry. Sequence starts at 1
// for every user and increases by exactly one per entry.
type WalletTransaction struct {
	UserId          string          `json:"user_id" dynamodbav:"user_id"`
	Sequence        int64           `json:"sequence" dynamodbav:"sequence"`
	Id              string          `json:"id" dynamodbav:"id"`
	TransactionType TransactionType `json:"transaction_type" dynamodbav:"transaction_type"`
	Amount          int64           `json:"amount" dynamodbav:"amount"`
	BalanceBefore   int64           `json:"balance_before" dynamodbav:"balance_before"`
	BalanceAfter    int64           `json:"balance_after" dynamodbav:"balance_after"`
	ReferenceId     string          `json:"reference_id" dynamodbav:"reference_id"`
	ReferenceType   ReferenceType   `json:"reference_type" dynamodbav:"reference_type"`
	Status          string          `json:"status" dynamodbav:"status"`
	Description     string          `json:"description" dynamodbav:"description"`
	CreatedAt       time.Time       `json:"created_at" dynamodbav:"created_at"`
}

// LedgerTip is the latest position of a user's ledger.
type LedgerTip struct {
	UserId   string
	Sequence int64
	Balance  int64
}

// ReferralType distinguishes peer referrals from campaign signups.
type ReferralType string

const (
	ReferralTypeUser     ReferralType = "user_referral"
	ReferralTypeCampaign ReferralType = "campaign_signup"
)

// ReferralStatus defines the lifecycle of a referral.
type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralCompleted ReferralStatus = "completed"
	ReferralRewarded  ReferralStatus = "rewarded"
)

// Referral links a referrer and a referee for reward purposes.
type Referral struct {
	Id           string         `json:"id" dynamodbav:"id"`
	ReferrerId   string         `json:"referrer_id" dynamodbav:"referrer_id"`
	RefereeId    string         `json:"referee_id" dynamodbav:"referee_id"`
	ReferralCode string         `json:"referral_code" dynamodbav:"referral_code"`
	ReferralType ReferralType   `json:"referral_type" dynamodbav:"referral_type"`
	Status       ReferralStatus `json:"status" dynamodbav:"status"`
	RewardAmount int64          `json:"reward_amount" dynamodbav:"reward_amount"`
	RefereeRole  Role           `json:"referee_role,omitempty" dynamodbav:"referee_role,omitempty"`
	NeedsReview  bool           `json:"needs_review,omitempty" dynamodbav:"needs_review,omitempty"`
	LastError    string         `json:"last_error,omitempty" dynamodbav:"last_error,omitempty"`
	CreatedAt    time.Time      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" dynamodbav:"updated_at"`
	RewardedAt   *time.Time     `json:"rewarded_at,omitempty" dynamodbav:"rewarded_at,omitempty"`
}

// ReferralID is the storage key of a referral. A referee owns at most one
// referral of each type, which the key makes unique.
func ReferralID(t ReferralType, refereeID string) string {
	return string(t) + "#" + refereeID
}

// RewardType is how a campaign rewards a signup.
type RewardType string

const (
	RewardNone         RewardType = "none"
	RewardWalletCredit RewardType = "wallet_credit"
	RewardDiscount     RewardType = "discount"
)

// NormalizeCode returns the stored form of a referral or campaign code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SystemCampaignCode is the reserved campaign holding the peer referral reward.
const SystemCampaignCode = "SYSTEM"

// CampaignReferral is a campaign configuration keyed by its code.
type CampaignReferral struct {
	Code                 string     `json:"code" dynamodbav:"code"`
	Name                 string     `json:"name" dynamodbav:"name"`
	OwnerId              string     `json:"owner_id,omitempty" dynamodbav:"owner_id,omitempty"`
	IsActive             bool       `json:"is_active" dynamodbav:"is_active"`
	ReferralRewardAmount int64      `json:"referral_reward_amount" dynamodbav:"referral_reward_amount"`
	ReferralRewardType   RewardType `json:"referral_reward_type" dynamodbav:"referral_reward_type"`
	TotalSignups         int64      `json:"total_signups" dynamodbav:"total_signups"`
	TotalCompanions      int64      `json:"total_companions" dynamodbav:"total_companions"`
	TotalSeekers         int64      `json:"total_seekers" dynamodbav:"total_seekers"`
	CreatedAt            time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

// PaysWalletCredit reports whether the campaign credits a wallet on reward.
func (c *CampaignReferral) PaysWalletCredit() bool {
	if c.ReferralRewardAmount <= 0 {
		return false
	}
	return c.ReferralRewardType == "" || c.ReferralRewardType == RewardWalletCredit
}

// PayoutStatus defines the possible states of a withdrawal request.
type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutApproved   PayoutStatus = "approved"
	PayoutProcessing PayoutStatus = "processing"
	PayoutRejected   PayoutStatus = "rejected"
	PayoutCompleted  PayoutStatus = "completed"
)

// PaymentMethod is how a payout is sent to the companion.
type PaymentMethod string

const (
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentDetails holds the destination of a payout.
type PaymentDetails struct {
	UpiId             string `json:"upi_id,omitempty" dynamodbav:"upi_id,omitempty"`
	BankName          string `json:"bank_name,omitempty" dynamodbav:"bank_name,omitempty"`
	AccountNumber     string `json:"account_number,omitempty" dynamodbav:"account_number,omitempty"`
	IfscCode          string `json:"ifsc_code,omitempty" dynamodbav:"ifsc_code,omitempty"`
	AccountHolderName string `json:"account_holder_name,omitempty" dynamodbav:"account_holder_name,omitempty"`
}

// ProcessedBySystem marks payouts resolved by the validator batch.
const ProcessedBySystem = "system_auto"

// Payout is a companion's withdrawal request.
type Payout struct {
	Id              string         `json:"id" dynamodbav:"id"`
	CompanionId     string         `json:"companion_id" dynamodbav:"companion_id"`
	RequestedAmount int64          `json:"requested_amount" dynamodbav:"requested_amount"`
	Amount          int64          `json:"amount" dynamodbav:"amount"`
	Status          PayoutStatus   `json:"status" dynamodbav:"status"`
	PaymentMethod   PaymentMethod  `json:"payment_method" dynamodbav:"payment_method"`
	PaymentDetails  PaymentDetails `json:"payment_details" dynamodbav:"payment_details"`
	RejectionReason string         `json:"rejection_reason,omitempty" dynamodbav:"rejection_reason,omitempty"`
	RejectionCode   string         `json:"rejection_code,omitempty" dynamodbav:"rejection_code,omitempty"`
	ProcessedDate   *time.Time     `json:"processed_date,omitempty" dynamodbav:"processed_date,omitempty"`
	ProcessedBy     string         `json:"processed_by,omitempty" dynamodbav:"processed_by,omitempty"`
	Reserved        bool           `json:"reserved" dynamodbav:"reserved"`
	RefundPending   bool           `json:"refund_pending,omitempty" dynamodbav:"refund_pending,omitempty"`
	ClaimId         string         `json:"claim_id,omitempty" dynamodbav:"claim_id,omitempty"`
	ClaimedAt       *time.Time     `json:"claimed_at,omitempty" dynamodbav:"claimed_at,omitempty"`
	Attempts        int            `json:"attempts" dynamodbav:"attempts"`
	CreatedAt       time.Time      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" dynamodbav:"updated_at"`
}

// WithdrawnAmount is what a payout takes out of the wallet. The requested
// amount is used when present so the platform fee is not subtracted twice.
func (p *Payout) WithdrawnAmount() int64 {
	if p.RequestedAmount > 0 {
		return p.RequestedAmount
	}
	return p.Amount
}

// NotificationType classifies an in-app notification.
type NotificationType string

const (
	NotifyReferralBonus   NotificationType = "referral_bonus"
	NotifyCampaignBonus   NotificationType = "campaign_bonus"
	NotifyPayoutApproved  NotificationType = "payout_approved"
	NotifyPayoutRejected  NotificationType = "payout_rejected"
	NotifyPayoutCompleted NotificationType = "payout_completed"
	NotifyRefund          NotificationType = "refund"
)

// Notification is a user-facing message emitted after a money movement.
type Notification struct {
	Id        string           `json:"id" dynamodbav:"id"`
	UserId    string           `json:"user_id" dynamodbav:"user_id"`
	Type      NotificationType `json:"type" dynamodbav:"type"`
	Message   string           `json:"message" dynamodbav:"message"`
	Amount    *int64           `json:"amount,omitempty" dynamodbav:"amount,omitempty"`
	CreatedAt time.Time        `json:"created_at" dynamodbav:"created_at"`
}

// Earning is the payee's share of a completed booking whose escrow has been released.
type Earning struct {
	BookingId string    `json:"booking_id"`
	Amount    int64     `json:"amount"`
	SettledAt time.Time `json:"settled_at"`
}
