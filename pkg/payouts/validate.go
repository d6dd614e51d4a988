package payouts

import (
	"strings"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/models"
)

// ValidatePaymentDetails checks that the details carry everything the method needs.
func ValidatePaymentDetails(method models.PaymentMethod, d models.PaymentDetails) error {
	blank := func(v string) bool { return strings.TrimSpace(v) == "" }

	switch method {
	case models.MethodUPI:
		if blank(d.UpiId) {
			return apperr.Validation(apperr.CodeInvalidPaymentDetails, "Invalid payment details: UPI ID is required")
		}
	case models.MethodBankTransfer:
		var missing []string
		if blank(d.BankName) {
			missing = append(missing, "bank name")
		}
		if blank(d.AccountNumber) {
			missing = append(missing, "account number")
		}
		if blank(d.IfscCode) {
			missing = append(missing, "IFSC code")
		}
		if blank(d.AccountHolderName) {
			missing = append(missing, "account holder name")
		}
		if len(missing) > 0 {
			return apperr.Validation(apperr.CodeInvalidPaymentDetails, "Invalid payment details: missing "+strings.Join(missing, ", "))
		}
	default:
		return apperr.Validation(apperr.CodeInvalidPaymentDetails, "Invalid payment details: unsupported payment method "+string(method))
	}
	return nil
}

// inFlight reports whether a payout still holds or may still hold funds.
func inFlight(status models.PayoutStatus) bool {
	return status == models.PayoutPending || status == models.PayoutApproved || status == models.PayoutProcessing
}

// findEarlierDuplicate returns an in-flight payout of the same companion with
// the same amount created at most window before p. Only earlier payouts count,
// so the original of a double submit is never the one rejected.
func findEarlierDuplicate(p *models.Payout, others []models.Payout, window time.Duration) *models.Payout {
	for i := range others {
		o := &others[i]
		if o.Id == p.Id || o.Amount != p.Amount || !inFlight(o.Status) {
			continue
		}
		earlier := o.CreatedAt.Before(p.CreatedAt) || (o.CreatedAt.Equal(p.CreatedAt) && o.Id < p.Id)
		if earlier && p.CreatedAt.Sub(o.CreatedAt) <= window {
			return o
		}
	}
	return nil
}
