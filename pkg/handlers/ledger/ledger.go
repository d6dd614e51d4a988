package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/apperr"
	walletledger "github.com/chris/wallet-payout-engine/pkg/ledger"
	"github.com/chris/wallet-payout-engine/pkg/mapping"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

const defaultLimit = 20

// Verifier replays a user's ledger.
type Verifier interface {
	VerifyChain(ctx context.Context, userID string) (*walletledger.ChainReport, error)
}

// LedgerHandler holds the dependencies for ledger-related handlers.
type LedgerHandler struct {
	Store    storage.LedgerReader
	Verifier Verifier
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(store storage.LedgerReader, verifier Verifier) *LedgerHandler {
	return &LedgerHandler{Store: store, Verifier: verifier}
}

// ListLedgerEntries returns a user's most recent wallet transactions, newest first.
func (h *LedgerHandler) ListLedgerEntries(w http.ResponseWriter, r *http.Request, userId string, params api.ListLedgerEntriesParams) {
	if _, ok := middleware.RequireSelfOrAdmin(w, r, userId); !ok {
		return
	}
	limit := defaultLimit
	if params.Limit != nil && *params.Limit > 0 {
		limit = *params.Limit
	}

	domainEntries, err := h.Store.ListLedgerEntries(r.Context(), userId)
	if err != nil {
		api.WriteError(w, apperr.System("Failed to retrieve ledger entries", err))
		return
	}

	apiEntries := make([]*api.LedgerEntry, 0, limit)
	for i := len(domainEntries) - 1; i >= 0 && len(apiEntries) < limit; i-- {
		apiEntries = append(apiEntries, mapping.ToApiLedgerEntry(&domainEntries[i]))
	}
	api.WriteJSON(w, http.StatusOK, apiEntries)
}

// VerifyLedger replays a user's ledger and reports any break in the chain.
// Admin only.
func (h *LedgerHandler) VerifyLedger(w http.ResponseWriter, r *http.Request, userId string) {
	if _, ok := middleware.RequireAdmin(w, r); !ok {
		return
	}
	report, err := h.Verifier.VerifyChain(r.Context(), userId)
	if errors.Is(err, storage.ErrNotFound) {
		api.WriteError(w, apperr.NotFound(apperr.CodeUserNotFound, "User not found"))
		return
	}
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiChainReport(report))
}
