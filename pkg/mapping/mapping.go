package mapping

import (
	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/payouts"
	"github.com/chris/wallet-payout-engine/pkg/reconcile"
	"github.com/chris/wallet-payout-engine/pkg/referrals"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToApiReferralOutcome converts a referral processing outcome.
func ToApiReferralOutcome(o *referrals.Outcome) *api.ReferralOutcome {
	return &api.ReferralOutcome{
		Success:          o.Success,
		Message:          o.Message,
		ReferralId:       optional(o.ReferralID),
		ReferrerId:       optional(o.ReferrerID),
		RewardAmount:     o.RewardAmount,
		AlreadyProcessed: o.AlreadyProcessed,
	}
}

// ToApiReferral converts a domain Referral.
func ToApiReferral(r *models.Referral) *api.Referral {
	return &api.Referral{
		Id:           r.Id,
		ReferrerId:   r.ReferrerId,
		RefereeId:    r.RefereeId,
		ReferralCode: r.ReferralCode,
		ReferralType: string(r.ReferralType),
		Status:       string(r.Status),
		RewardAmount: r.RewardAmount,
		NeedsReview:  r.NeedsReview,
		LastError:    optional(r.LastError),
		CreatedAt:    r.CreatedAt,
		RewardedAt:   r.RewardedAt,
	}
}

// ToDomainNewCampaign converts a campaign creation request. The reward is
// given in rupees.
func ToDomainNewCampaign(c *api.NewCampaign) (*models.CampaignReferral, error) {
	amount := int64(0)
	if c.RewardAmount != "" {
		var err error
		if amount, err = models.ParseAmount(c.RewardAmount); err != nil {
			return nil, err
		}
	}
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}
	return &models.CampaignReferral{
		Code:                 c.Code,
		Name:                 c.Name,
		OwnerId:              value(c.OwnerId),
		IsActive:             active,
		ReferralRewardAmount: amount,
		ReferralRewardType:   models.RewardType(value(c.RewardType)),
	}, nil
}

// ToApiCampaign converts a domain CampaignReferral.
func ToApiCampaign(c *models.CampaignReferral) *api.Campaign {
	return &api.Campaign{
		Code:            c.Code,
		Name:            c.Name,
		OwnerId:         optional(c.OwnerId),
		IsActive:        c.IsActive,
		RewardAmount:    c.ReferralRewardAmount,
		RewardDisplay:   models.FormatAmount(c.ReferralRewardAmount),
		RewardType:      string(c.ReferralRewardType),
		TotalSignups:    c.TotalSignups,
		TotalCompanions: c.TotalCompanions,
		TotalSeekers:    c.TotalSeekers,
		CreatedAt:       c.CreatedAt,
	}
}

// ToApiManualReward converts a manual reward result.
func ToApiManualReward(m *campaigns.ManualReward) *api.ManualReward {
	return &api.ManualReward{
		UserId:     m.UserID,
		ReferralId: m.ReferralID,
		OldBalance: m.OldBalance,
		NewBalance: m.NewBalance,
		Amount:     m.Amount,
	}
}

func toApiStats(s storage.CampaignStats) api.CampaignStats {
	return api.CampaignStats{
		TotalSignups:    s.Signups,
		TotalCompanions: s.Companions,
		TotalSeekers:    s.Seekers,
	}
}

// ToApiStatsResults converts campaign recount results.
func ToApiStatsResults(results []campaigns.StatsResult) []api.StatsResult {
	out := make([]api.StatsResult, len(results))
	for i, r := range results {
		out[i] = api.StatsResult{
			Code:    r.Code,
			Before:  toApiStats(r.Before),
			After:   toApiStats(r.After),
			Changed: r.Changed,
		}
	}
	return out
}

// ToApiDistributionResult converts a distributor run.
func ToApiDistributionResult(d *campaigns.DistributionResult) *api.DistributionResult {
	out := &api.DistributionResult{
		RewardedCount:  d.RewardedCount,
		CompletedCount: d.CompletedCount,
		SkippedCount:   d.SkippedCount,
		ErrorCount:     d.ErrorCount,
		Results:        make([]api.DistributionItem, len(d.Results)),
		Errors:         append([]string{}, d.Errors...),
	}
	for i, item := range d.Results {
		out.Results[i] = api.DistributionItem{
			ReferralId: item.ReferralID,
			Code:       item.Code,
			Outcome:    item.Outcome,
			Amount:     item.Amount,
			Reason:     optional(item.Reason),
		}
	}
	return out
}

// ToDomainPaymentDetails converts payment details.
func ToDomainPaymentDetails(d api.PaymentDetails) models.PaymentDetails {
	return models.PaymentDetails{
		UpiId:             value(d.UpiId),
		BankName:          value(d.BankName),
		AccountNumber:     value(d.AccountNumber),
		IfscCode:          value(d.IfscCode),
		AccountHolderName: value(d.AccountHolderName),
	}
}

func toApiPaymentDetails(d models.PaymentDetails) api.PaymentDetails {
	return api.PaymentDetails{
		UpiId:             optional(d.UpiId),
		BankName:          optional(d.BankName),
		AccountNumber:     optional(d.AccountNumber),
		IfscCode:          optional(d.IfscCode),
		AccountHolderName: optional(d.AccountHolderName),
	}
}

// ToDomainPayoutRequest converts a payout request. Amounts are given in rupees.
func ToDomainPayoutRequest(companionID string, p *api.NewPayout) (payouts.Request, error) {
	amount, err := models.ParseAmount(p.Amount)
	if err != nil {
		return payouts.Request{}, err
	}
	fee := int64(0)
	if p.Fee != nil {
		if fee, err = models.ParseAmount(*p.Fee); err != nil {
			return payouts.Request{}, err
		}
	}
	return payouts.Request{
		CompanionID: companionID,
		Amount:      amount,
		Fee:         fee,
		Method:      models.PaymentMethod(p.PaymentMethod),
		Details:     ToDomainPaymentDetails(p.PaymentDetails),
	}, nil
}

// ToApiPayout converts a domain Payout.
func ToApiPayout(p *models.Payout) *api.Payout {
	return &api.Payout{
		Id:              p.Id,
		CompanionId:     p.CompanionId,
		RequestedAmount: p.RequestedAmount,
		Amount:          p.Amount,
		Status:          string(p.Status),
		PaymentMethod:   string(p.PaymentMethod),
		PaymentDetails:  toApiPaymentDetails(p.PaymentDetails),
		RejectionReason: optional(p.RejectionReason),
		RejectionCode:   optional(p.RejectionCode),
		ProcessedDate:   p.ProcessedDate,
		ProcessedBy:     optional(p.ProcessedBy),
		Reserved:        p.Reserved,
		RefundPending:   p.RefundPending,
		Attempts:        p.Attempts,
		CreatedAt:       p.CreatedAt,
	}
}

// ToApiPayoutBatch converts a validator run.
func ToApiPayoutBatch(b *payouts.BatchResult) *api.PayoutBatch {
	out := &api.PayoutBatch{Processed: b.Processed, Results: make([]api.PayoutResult, len(b.Results))}
	for i, r := range b.Results {
		out.Results[i] = api.PayoutResult{
			Id:     r.ID,
			Status: r.Status,
			Reason: optional(r.Reason),
			Code:   optional(r.Code),
		}
	}
	return out
}

// ToApiBalance converts an available balance breakdown.
func ToApiBalance(b *earnings.Breakdown) *api.Balance {
	return &api.Balance{
		UserId:           b.UserID,
		BookingEarnings:  b.BookingEarnings,
		ReferralCount:    b.ReferralCount,
		ReferralBonuses:  b.ReferralBonuses,
		CampaignBonuses:  b.CampaignBonuses,
		CompletedPayouts: b.CompletedPayouts,
		InFlightPayouts:  b.InFlightPayouts,
		Available:        b.Available,
		AvailableDisplay: models.FormatAmount(b.Available),
	}
}

// ToApiLedgerEntry converts a domain WalletTransaction.
func ToApiLedgerEntry(entry *models.WalletTransaction) *api.LedgerEntry {
	return &api.LedgerEntry{
		EntryId:         entry.Id,
		Sequence:        entry.Sequence,
		TransactionType: string(entry.TransactionType),
		Amount:          entry.Amount,
		BalanceBefore:   entry.BalanceBefore,
		BalanceAfter:    entry.BalanceAfter,
		ReferenceId:     entry.ReferenceId,
		ReferenceType:   string(entry.ReferenceType),
		Description:     entry.Description,
		Timestamp:       entry.CreatedAt,
	}
}

// ToApiChainReport converts a ledger replay report.
func ToApiChainReport(r *ledger.ChainReport) *api.ChainReport {
	return &api.ChainReport{
		UserId:        r.UserID,
		Entries:       r.Entries,
		TipSequence:   r.TipSequence,
		TipBalance:    r.TipBalance,
		CachedBalance: r.CachedBalance,
		Valid:         r.Valid,
		Problems:      append([]string{}, r.Problems...),
	}
}

// ToApiNotification converts a domain Notification.
func ToApiNotification(n *models.Notification) *api.Notification {
	return &api.Notification{
		Id:        n.Id,
		Type:      string(n.Type),
		Message:   n.Message,
		Amount:    n.Amount,
		CreatedAt: n.CreatedAt,
	}
}

// ToApiReconcileReport converts a reconciliation report.
func ToApiReconcileReport(r *reconcile.Report) *api.ReconcileReport {
	return &api.ReconcileReport{
		ReleasedClaims:    r.ReleasedClaims,
		ResumedReferrals:  r.ResumedReferrals,
		FlaggedReferrals:  r.FlaggedReferrals,
		RefundsCommitted:  r.RefundsCommitted,
		CampaignsRepaired: r.CampaignsRepaired,
		Errors:            append([]string{}, r.Errors...),
	}
}
