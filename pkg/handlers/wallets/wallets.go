package wallets

import (
	"context"
	"net/http"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/mapping"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

const defaultNotificationLimit = 20

// BalanceSource computes available balances.
type BalanceSource interface {
	ComputeAvailableBalance(ctx context.Context, userID, excludePayoutID string) (*earnings.Breakdown, error)
}

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Balances      BalanceSource
	Notifications storage.NotificationStore
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(balances BalanceSource, notifications storage.NotificationStore) *WalletsHandler {
	return &WalletsHandler{Balances: balances, Notifications: notifications}
}

// GetBalance returns the available balance breakdown of a user.
func (h *WalletsHandler) GetBalance(w http.ResponseWriter, r *http.Request, userId string, params api.GetBalanceParams) {
	if _, ok := middleware.RequireSelfOrAdmin(w, r, userId); !ok {
		return
	}
	exclude := ""
	if params.ExcludePayoutId != nil {
		exclude = *params.ExcludePayoutId
	}

	b, err := h.Balances.ComputeAvailableBalance(r.Context(), userId, exclude)
	if err != nil {
		api.WriteError(w, apperr.System("Failed to compute balance", err))
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiBalance(b))
}

// ListNotifications returns a user's in-app notifications, newest first.
func (h *WalletsHandler) ListNotifications(w http.ResponseWriter, r *http.Request, userId string, params api.ListNotificationsParams) {
	if _, ok := middleware.RequireSelfOrAdmin(w, r, userId); !ok {
		return
	}
	limit := int32(defaultNotificationLimit)
	if params.Limit != nil && *params.Limit > 0 {
		limit = int32(*params.Limit)
	}

	notifications, err := h.Notifications.ListNotifications(r.Context(), userId, limit)
	if err != nil {
		api.WriteError(w, apperr.System("Failed to retrieve notifications", err))
		return
	}

	out := make([]*api.Notification, len(notifications))
	for i := range notifications {
		out[i] = mapping.ToApiNotification(&notifications[i])
	}
	api.WriteJSON(w, http.StatusOK, out)
}
