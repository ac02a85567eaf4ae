package httpadapter

import (
	"net/http"
	"strings"

	"campaign-escrow/internal/core/port"
)

type createCampaignRequest struct {
	Details          string `json:"details"`
	RewardPerCreator string `json:"reward_per_creator"`
	MaxCreators      int64  `json:"max_creators"`
	DurationDays     int64  `json:"duration_days"`
}

// handleCreateCampaign creates and funds a campaign from the caller's
// approved balance. Responds 201 with the campaign.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req createCampaignRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	reward, err := h.amounts.Parse(req.RewardPerCreator)
	if err != nil {
		h.badRequest(w, r, "reward_per_creator: "+err.Error())
		return
	}
	c, err := h.svc.CreateCampaign(r.Context(), caller, port.CreateCampaignReq{
		Details:          req.Details,
		RewardPerCreator: reward,
		MaxCreators:      req.MaxCreators,
		DurationDays:     req.DurationDays,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+itoa(c.ID))
	h.writeJSON(w, http.StatusCreated, h.campaignView(c))
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListCampaigns(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]campaignView, 0, len(list))
	for _, c := range list {
		out = append(out, h.campaignView(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleNextCampaignID(w http.ResponseWriter, r *http.Request) {
	next, err := h.svc.NextCampaignID(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"next_campaign_id": next})
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.campaignView(c))
}

type statusRequest struct {
	Active *bool `json:"active"`
}

func (h *Handler) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		h.badRequest(w, r, "active is required")
		return
	}
	c, err := h.svc.ToggleCampaignStatus(r.Context(), caller, id, *req.Active)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.campaignView(c))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	refunded, err := h.svc.WithdrawRemainingFunds(r.Context(), caller, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"campaign_id": id,
		"refunded":    h.amounts.Format(refunded),
	})
}
