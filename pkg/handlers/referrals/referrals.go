package referrals

import (
	"context"
	"net/http"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/mapping"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/referrals"
)

// Processor applies peer referral codes.
type Processor interface {
	ProcessReferral(ctx context.Context, actorID, code string) (*referrals.Outcome, error)
}

// ReferralsHandler holds the dependencies for referral handlers.
type ReferralsHandler struct {
	Processor Processor
}

// NewReferralsHandler creates a new ReferralsHandler.
func NewReferralsHandler(p Processor) *ReferralsHandler {
	return &ReferralsHandler{Processor: p}
}

// ApplyReferral applies a referral code on behalf of the calling user.
// Repeating the call is safe and reports the referral as already processed.
func (h *ReferralsHandler) ApplyReferral(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.RequireActor(w, r)
	if !ok {
		return
	}
	var body api.ApplyReferral
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	out, err := h.Processor.ProcessReferral(r.Context(), actor.ID, body.Code)
	if err != nil {
		api.WriteOutcomeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiReferralOutcome(out))
}
