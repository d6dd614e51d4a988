package wallets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/earnings"
	"github.com/chris/wallet-payout-engine/pkg/handlers/wallets"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBalances struct{ mock.Mock }

func (m *mockBalances) ComputeAvailableBalance(ctx context.Context, userID, excludePayoutID string) (*earnings.Breakdown, error) {
	args := m.Called(ctx, userID, excludePayoutID)
	out, _ := args.Get(0).(*earnings.Breakdown)
	return out, args.Error(1)
}

type mockNotifications struct{ mock.Mock }

func (m *mockNotifications) SaveNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockNotifications) ListNotifications(ctx context.Context, userID string, limit int32) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	out, _ := args.Get(0).([]models.Notification)
	return out, args.Error(1)
}

func request(target, actorID string, role models.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(middleware.WithActor(req.Context(), middleware.Actor{ID: actorID, Role: role}))
}

func TestGetBalance(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		balances := new(mockBalances)
		balances.On("ComputeAvailableBalance", mock.Anything, "asha", "p1").Return(&earnings.Breakdown{
			UserID: "asha", BookingEarnings: 100000, ReferralBonuses: 5000, InFlightPayouts: 20000, Available: 85000,
		}, nil)
		h := wallets.NewWalletsHandler(balances, nil)
		exclude := "p1"
		rr := httptest.NewRecorder()

		// Act
		h.GetBalance(rr, request("/users/asha/balance?exclude_payout_id=p1", "asha", models.RoleCompanion), "asha", api.GetBalanceParams{ExcludePayoutId: &exclude})

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		var out api.Balance
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, int64(85000), out.Available)
		assert.Equal(t, "₹850.00", out.AvailableDisplay)
		balances.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		balances := new(mockBalances)
		balances.On("ComputeAvailableBalance", mock.Anything, "asha", "").Return(nil, assert.AnError)
		h := wallets.NewWalletsHandler(balances, nil)
		rr := httptest.NewRecorder()

		h.GetBalance(rr, request("/users/asha/balance", "ops", models.RoleAdmin), "asha", api.GetBalanceParams{})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
	})

	t.Run("Missing Actor", func(t *testing.T) {
		h := wallets.NewWalletsHandler(new(mockBalances), nil)
		rr := httptest.NewRecorder()

		h.GetBalance(rr, httptest.NewRequest(http.MethodGet, "/users/asha/balance", nil), "asha", api.GetBalanceParams{})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestListNotifications(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		amount := int64(5000)
		notifications := new(mockNotifications)
		notifications.On("ListNotifications", mock.Anything, "asha", int32(20)).Return([]models.Notification{
			{Id: "n2", UserId: "asha", Type: models.NotifyPayoutApproved, Message: "Your payout of ₹50.00 was approved", Amount: &amount, CreatedAt: time.Now()},
			{Id: "n1", UserId: "asha", Type: models.NotifyReferralBonus, Message: "You earned ₹50.00", CreatedAt: time.Now().Add(-time.Hour)},
		}, nil)
		h := wallets.NewWalletsHandler(nil, notifications)
		rr := httptest.NewRecorder()

		h.ListNotifications(rr, request("/users/asha/notifications", "asha", models.RoleCompanion), "asha", api.ListNotificationsParams{})

		assert.Equal(t, http.StatusOK, rr.Code)
		var out []api.Notification
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		require.Len(t, out, 2)
		assert.Equal(t, "n2", out[0].Id)
		assert.Equal(t, "payout_approved", out[0].Type)
		notifications.AssertExpectations(t)
	})

	t.Run("Other User", func(t *testing.T) {
		h := wallets.NewWalletsHandler(nil, new(mockNotifications))
		rr := httptest.NewRecorder()

		h.ListNotifications(rr, request("/users/asha/notifications", "ravi", models.RoleSeeker), "asha", api.ListNotificationsParams{})

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
