package payouts

import (
	"context"
	"net/http"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/mapping"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/payouts"
)

// Service is the payout component as seen by the API.
type Service interface {
	RequestPayout(ctx context.Context, req payouts.Request) (*models.Payout, error)
	GetPayout(ctx context.Context, id string) (*models.Payout, error)
	ProcessPayouts(ctx context.Context) (*payouts.BatchResult, error)
	CompletePayout(ctx context.Context, id, adminID string) (*models.Payout, error)
	AdminRejectPayout(ctx context.Context, id, adminID, reason string) (*models.Payout, error)
}

// PayoutsHandler holds the dependencies for payout handlers.
type PayoutsHandler struct {
	Service Service
}

// NewPayoutsHandler creates a new PayoutsHandler.
func NewPayoutsHandler(s Service) *PayoutsHandler {
	return &PayoutsHandler{Service: s}
}

// RequestPayout creates a withdrawal request for the calling companion.
func (h *PayoutsHandler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.RequireActor(w, r)
	if !ok {
		return
	}
	var body api.NewPayout
	if !api.DecodeJSON(w, r, &body) {
		return
	}
	req, err := mapping.ToDomainPayoutRequest(actor.ID, &body)
	if err != nil {
		api.WriteError(w, apperr.Validation(apperr.CodeInvalidAmount, err.Error()))
		return
	}

	p, err := h.Service.RequestPayout(r.Context(), req)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, mapping.ToApiPayout(p))
}

// GetPayout returns a payout to its companion or an admin.
func (h *PayoutsHandler) GetPayout(w http.ResponseWriter, r *http.Request, payoutId string) {
	actor, ok := middleware.RequireActor(w, r)
	if !ok {
		return
	}
	p, err := h.Service.GetPayout(r.Context(), payoutId)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	// Other companions' payouts are reported as missing.
	if p.CompanionId != actor.ID && !actor.IsAdmin() {
		api.WriteError(w, apperr.NotFound(apperr.CodePayoutNotFound, "Payout not found"))
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiPayout(p))
}

// ProcessPayouts runs the validator over every pending payout. Admin only.
func (h *PayoutsHandler) ProcessPayouts(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequireAdmin(w, r); !ok {
		return
	}
	res, err := h.Service.ProcessPayouts(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiPayoutBatch(res))
}

// CompletePayout marks an approved payout as sent. Admin only.
func (h *PayoutsHandler) CompletePayout(w http.ResponseWriter, r *http.Request, payoutId string) {
	actor, ok := middleware.RequireAdmin(w, r)
	if !ok {
		return
	}
	p, err := h.Service.CompletePayout(r.Context(), payoutId, actor.ID)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiPayout(p))
}

// RejectPayout rejects a pending or approved payout. Admin only.
func (h *PayoutsHandler) RejectPayout(w http.ResponseWriter, r *http.Request, payoutId string) {
	actor, ok := middleware.RequireAdmin(w, r)
	if !ok {
		return
	}
	var body api.RejectPayout
	if r.ContentLength != 0 && !api.DecodeJSON(w, r, &body) {
		return
	}
	reason := ""
	if body.Reason != nil {
		reason = *body.Reason
	}

	p, err := h.Service.AdminRejectPayout(r.Context(), payoutId, actor.ID, reason)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiPayout(p))
}
