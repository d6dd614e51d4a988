package handlers

import (
	"context"
	"net/http"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/bootstrap"
	"github.com/chris/wallet-payout-engine/pkg/handlers/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/handlers/ledger"
	"github.com/chris/wallet-payout-engine/pkg/handlers/payouts"
	"github.com/chris/wallet-payout-engine/pkg/handlers/referrals"
	"github.com/chris/wallet-payout-engine/pkg/handlers/wallets"
	"github.com/chris/wallet-payout-engine/pkg/mapping"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/reconcile"
)

// ReconcileRunner runs a reconciliation pass.
type ReconcileRunner interface {
	Reconcile(ctx context.Context) (*reconcile.Report, error)
}

// ApiHandler implements the server interface.
// It composes the handlers of each API area.
type ApiHandler struct {
	*referrals.ReferralsHandler
	*campaigns.CampaignsHandler
	*payouts.PayoutsHandler
	*ledger.LedgerHandler
	*wallets.WalletsHandler

	Reconciler ReconcileRunner
}

// NewApiHandler creates an ApiHandler over the wired application.
func NewApiHandler(app *bootstrap.App) *ApiHandler {
	return &ApiHandler{
		ReferralsHandler: referrals.NewReferralsHandler(app.Referrals),
		CampaignsHandler: campaigns.NewCampaignsHandler(app.Campaigns),
		PayoutsHandler:   payouts.NewPayoutsHandler(app.Payouts),
		LedgerHandler:    ledger.NewLedgerHandler(app.Store, app.Ledger),
		WalletsHandler:   wallets.NewWalletsHandler(app.Earnings, app.Store),
		Reconciler:       app.Jobs,
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// Reconcile runs a reconciliation pass on demand. Admin only.
func (h *ApiHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequireAdmin(w, r); !ok {
		return
	}
	report, err := h.Reconciler.Reconcile(r.Context())
	if err != nil {
		api.WriteError(w, apperr.System("Reconciliation failed", err))
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiReconcileReport(report))
}
