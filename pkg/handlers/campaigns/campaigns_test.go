package campaigns_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	handlers "github.com/chris/wallet-payout-engine/pkg/handlers/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct{ mock.Mock }

func (m *mockService) CreateCampaign(ctx context.Context, c *models.CampaignReferral) (*models.CampaignReferral, error) {
	args := m.Called(ctx, c)
	out, _ := args.Get(0).(*models.CampaignReferral)
	return out, args.Error(1)
}

func (m *mockService) GetCampaign(ctx context.Context, code string) (*models.CampaignReferral, error) {
	args := m.Called(ctx, code)
	out, _ := args.Get(0).(*models.CampaignReferral)
	return out, args.Error(1)
}

func (m *mockService) ListCampaigns(ctx context.Context) ([]models.CampaignReferral, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]models.CampaignReferral)
	return out, args.Error(1)
}

func (m *mockService) RegisterCampaignSignup(ctx context.Context, userID, code string) (*models.Referral, error) {
	args := m.Called(ctx, userID, code)
	out, _ := args.Get(0).(*models.Referral)
	return out, args.Error(1)
}

func (m *mockService) ManuallyRewardCampaignUser(ctx context.Context, email, code string) (*campaigns.ManualReward, error) {
	args := m.Called(ctx, email, code)
	out, _ := args.Get(0).(*campaigns.ManualReward)
	return out, args.Error(1)
}

func (m *mockService) RecalculateCampaignStats(ctx context.Context, code string) ([]campaigns.StatsResult, error) {
	args := m.Called(ctx, code)
	out, _ := args.Get(0).([]campaigns.StatsResult)
	return out, args.Error(1)
}

func (m *mockService) DistributeReferralRewards(ctx context.Context) (*campaigns.DistributionResult, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*campaigns.DistributionResult)
	return out, args.Error(1)
}

func as(req *http.Request, id string, role models.Role) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), middleware.Actor{ID: id, Role: role}))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestCreateCampaign(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s := new(mockService)
		s.On("CreateCampaign", mock.Anything, mock.MatchedBy(func(c *models.CampaignReferral) bool {
			return c.Code == "diwali" && c.ReferralRewardAmount == 5000 && c.IsActive
		})).Return(&models.CampaignReferral{
			Code: "DIWALI", IsActive: true, ReferralRewardAmount: 5000, ReferralRewardType: models.RewardWalletCredit,
		}, nil)
		h := handlers.NewCampaignsHandler(s)

		req := as(httptest.NewRequest(http.MethodPost, "/campaigns", jsonBody(t, api.NewCampaign{Code: "diwali", RewardAmount: "50"})), "ops", models.RoleAdmin)
		rr := httptest.NewRecorder()
		h.CreateCampaign(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var out api.Campaign
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, "DIWALI", out.Code)
		assert.Equal(t, "₹50.00", out.RewardDisplay)
		s.AssertExpectations(t)
	})

	t.Run("Not Admin", func(t *testing.T) {
		s := new(mockService)
		h := handlers.NewCampaignsHandler(s)

		req := as(httptest.NewRequest(http.MethodPost, "/campaigns", jsonBody(t, api.NewCampaign{Code: "X"})), "asha", models.RoleCompanion)
		rr := httptest.NewRecorder()
		h.CreateCampaign(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		s.AssertNotCalled(t, "CreateCampaign", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		h := handlers.NewCampaignsHandler(new(mockService))

		req := as(httptest.NewRequest(http.MethodPost, "/campaigns", jsonBody(t, api.NewCampaign{Code: "X", RewardAmount: "-5"})), "ops", models.RoleAdmin)
		rr := httptest.NewRecorder()
		h.CreateCampaign(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), apperr.CodeInvalidAmount)
	})
}

func TestGetCampaign(t *testing.T) {
	t.Run("Not Found", func(t *testing.T) {
		s := new(mockService)
		s.On("GetCampaign", mock.Anything, "nope").Return(nil, apperr.NotFound(apperr.CodeCampaignNotFound, "Campaign not found"))
		h := handlers.NewCampaignsHandler(s)

		rr := httptest.NewRecorder()
		h.GetCampaign(rr, as(httptest.NewRequest(http.MethodGet, "/campaigns/nope", nil), "asha", models.RoleCompanion), "nope")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestManuallyRewardCampaignUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s := new(mockService)
		s.On("ManuallyRewardCampaignUser", mock.Anything, "meera@example.com", "DIWALI").Return(&campaigns.ManualReward{
			UserID: "meera", ReferralID: "campaign_signup#meera", OldBalance: 0, NewBalance: 5000, Amount: 5000,
		}, nil)
		h := handlers.NewCampaignsHandler(s)

		req := as(httptest.NewRequest(http.MethodPost, "/campaigns/DIWALI/manual-rewards",
			bytes.NewBufferString(`{"email":"meera@example.com"}`)), "ops", models.RoleAdmin)
		rr := httptest.NewRecorder()
		h.ManuallyRewardCampaignUser(rr, req, "DIWALI")

		assert.Equal(t, http.StatusOK, rr.Code)
		var out api.ManualReward
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, int64(5000), out.NewBalance)
		s.AssertExpectations(t)
	})

	t.Run("Invalid Email", func(t *testing.T) {
		s := new(mockService)
		h := handlers.NewCampaignsHandler(s)

		req := as(httptest.NewRequest(http.MethodPost, "/campaigns/DIWALI/manual-rewards",
			bytes.NewBufferString(`{"email":"not-an-email"}`)), "ops", models.RoleAdmin)
		rr := httptest.NewRecorder()
		h.ManuallyRewardCampaignUser(rr, req, "DIWALI")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		s.AssertNotCalled(t, "ManuallyRewardCampaignUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Inactive Campaign", func(t *testing.T) {
		s := new(mockService)
		s.On("ManuallyRewardCampaignUser", mock.Anything, "meera@example.com", "OLD").
			Return(nil, apperr.InactiveCampaign("Campaign OLD is not active"))
		h := handlers.NewCampaignsHandler(s)

		req := as(httptest.NewRequest(http.MethodPost, "/campaigns/OLD/manual-rewards",
			bytes.NewBufferString(`{"email":"meera@example.com"}`)), "ops", models.RoleAdmin)
		rr := httptest.NewRecorder()
		h.ManuallyRewardCampaignUser(rr, req, "OLD")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), apperr.CodeCampaignInactive)
	})
}

func TestRecalculateCampaignStats(t *testing.T) {
	s := new(mockService)
	s.On("RecalculateCampaignStats", mock.Anything, "").Return([]campaigns.StatsResult{{Code: "DIWALI", Changed: true}}, nil)
	h := handlers.NewCampaignsHandler(s)

	rr := httptest.NewRecorder()
	h.RecalculateCampaignStats(rr, as(httptest.NewRequest(http.MethodPost, "/campaigns/stats/recalculate", nil), "ops", models.RoleAdmin),
		api.RecalculateCampaignStatsParams{})

	assert.Equal(t, http.StatusOK, rr.Code)
	var out []api.StatsResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.True(t, out[0].Changed)
	s.AssertExpectations(t)
}
