package campaigns

import (
	"context"
	"net/http"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/apperr"
	"github.com/chris/wallet-payout-engine/pkg/campaigns"
	"github.com/chris/wallet-payout-engine/pkg/mapping"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/chris/wallet-payout-engine/pkg/models"
)

// Service is the campaign component as seen by the API.
type Service interface {
	CreateCampaign(ctx context.Context, c *models.CampaignReferral) (*models.CampaignReferral, error)
	GetCampaign(ctx context.Context, code string) (*models.CampaignReferral, error)
	ListCampaigns(ctx context.Context) ([]models.CampaignReferral, error)
	RegisterCampaignSignup(ctx context.Context, userID, code string) (*models.Referral, error)
	ManuallyRewardCampaignUser(ctx context.Context, email, code string) (*campaigns.ManualReward, error)
	RecalculateCampaignStats(ctx context.Context, code string) ([]campaigns.StatsResult, error)
	DistributeReferralRewards(ctx context.Context) (*campaigns.DistributionResult, error)
}

// CampaignsHandler holds the dependencies for campaign handlers.
type CampaignsHandler struct {
	Service Service
}

// NewCampaignsHandler creates a new CampaignsHandler.
func NewCampaignsHandler(s Service) *CampaignsHandler {
	return &CampaignsHandler{Service: s}
}

// ListCampaigns returns every campaign.
func (h *CampaignsHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequireActor(w, r); !ok {
		return
	}
	list, err := h.Service.ListCampaigns(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}
	out := make([]*api.Campaign, len(list))
	for i := range list {
		out[i] = mapping.ToApiCampaign(&list[i])
	}
	api.WriteJSON(w, http.StatusOK, out)
}

// CreateCampaign stores a new campaign. Admin only.
func (h *CampaignsHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequireAdmin(w, r); !ok {
		return
	}
	var body api.NewCampaign
	if !api.DecodeJSON(w, r, &body) {
		return
	}
	c, err := mapping.ToDomainNewCampaign(&body)
	if err != nil {
		api.WriteError(w, apperr.Validation(apperr.CodeInvalidAmount, err.Error()))
		return
	}

	created, err := h.Service.CreateCampaign(r.Context(), c)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, mapping.ToApiCampaign(created))
}

// GetCampaign returns one campaign.
func (h *CampaignsHandler) GetCampaign(w http.ResponseWriter, r *http.Request, code string) {
	if _, ok := middleware.RequireActor(w, r); !ok {
		return
	}
	c, err := h.Service.GetCampaign(r.Context(), code)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiCampaign(c))
}

// RegisterCampaignSignup records a campaign code for the calling user.
func (h *CampaignsHandler) RegisterCampaignSignup(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.RequireActor(w, r)
	if !ok {
		return
	}
	var body api.CampaignSignup
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	ref, err := h.Service.RegisterCampaignSignup(r.Context(), actor.ID, body.Code)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiReferral(ref))
}

// ManuallyRewardCampaignUser credits the campaign reward to a user by email. Admin only.
func (h *CampaignsHandler) ManuallyRewardCampaignUser(w http.ResponseWriter, r *http.Request, code string) {
	if _, ok := middleware.RequireAdmin(w, r); !ok {
		return
	}
	var body api.ManualRewardRequest
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	res, err := h.Service.ManuallyRewardCampaignUser(r.Context(), string(body.Email), code)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiManualReward(res))
}

// RecalculateCampaignStats recounts one campaign or all of them. Admin only.
func (h *CampaignsHandler) RecalculateCampaignStats(w http.ResponseWriter, r *http.Request, params api.RecalculateCampaignStatsParams) {
	if _, ok := middleware.RequireAdmin(w, r); !ok {
		return
	}
	code := ""
	if params.Code != nil {
		code = *params.Code
	}

	results, err := h.Service.RecalculateCampaignStats(r.Context(), code)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiStatsResults(results))
}

// DistributeReferralRewards runs the campaign reward distributor. Admin only.
func (h *CampaignsHandler) DistributeReferralRewards(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequireAdmin(w, r); !ok {
		return
	}
	res, err := h.Service.DistributeReferralRewards(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, mapping.ToApiDistributionResult(res))
}
