// Package apperr defines the outcome taxonomy shared by the wallet engine.
// Every negative outcome carries a Kind and a stable machine-readable Code so
// callers never need to parse messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the class of failure.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found_error"
	KindConflict          Kind = "conflict_error"
	KindInsufficientFunds Kind = "insufficient_funds_error"
	KindInactiveCampaign  Kind = "inactive_campaign_error"
	KindSystem            Kind = "system_error"
)

// Reason codes.
const (
	CodeInvalidReferralCode   = "invalid_referral_code"
	CodeSelfReferral          = "self_referral"
	CodeReferralAlreadyUsed   = "referral_already_used"
	CodeCampaignReferralInUse = "campaign_referral_exists"
	CodeUserNotFound          = "user_not_found"
	CodeNotCompanion          = "not_companion"
	CodeReferrerNotFound      = "referrer_not_found"
	CodeCampaignNotFound      = "campaign_not_found"
	CodeCampaignInactive      = "campaign_inactive"
	CodeAlreadyRewarded       = "already_rewarded"
	CodeInsufficientBalance   = "insufficient_balance"
	CodeDuplicatePayout       = "duplicate_payout"
	CodeInvalidPaymentDetails = "invalid_payment_details"
	CodeInvalidAmount         = "invalid_amount"
	CodePayoutNotFound        = "payout_not_found"
	CodeInvalidTransition     = "invalid_status_transition"
	CodeSystemError           = "system_error"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code, msg string) *Error { return newError(KindValidation, code, msg) }

func NotFound(code, msg string) *Error { return newError(KindNotFound, code, msg) }

func Conflict(code, msg string) *Error { return newError(KindConflict, code, msg) }

func InsufficientFunds(msg string) *Error {
	return newError(KindInsufficientFunds, CodeInsufficientBalance, msg)
}

func InactiveCampaign(msg string) *Error {
	return newError(KindInactiveCampaign, CodeCampaignInactive, msg)
}

// System wraps an unexpected failure.
func System(msg string, err error) *Error {
	return &Error{Kind: KindSystem, Code: CodeSystemError, Message: msg, Err: err}
}

// KindOf returns the kind of err, KindSystem for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// CodeOf returns the reason code of err, CodeSystemError for unclassified errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeSystemError
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
