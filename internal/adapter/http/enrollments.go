package httpadapter

import (
	"net/http"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	e, err := h.svc.Enroll(r.Context(), caller, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.enrollmentView(e))
}

func (h *Handler) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.GetCampaignEnrollments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]enrollmentView, 0, len(list))
	for _, e := range list {
		out = append(out, h.enrollmentView(e))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	creator, ok := h.addressParam(w, r, "creator")
	if !ok {
		return
	}
	e, err := h.svc.GetEnrollment(r.Context(), id, creator)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.enrollmentView(e))
}

func (h *Handler) handleHasEnrolled(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	creator, ok := h.addressParam(w, r, "creator")
	if !ok {
		return
	}
	enrolled, err := h.svc.HasEnrolled(r.Context(), id, creator)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"enrolled": enrolled})
}

type submissionRequest struct {
	URL string `json:"url"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	var req submissionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	e, err := h.svc.SubmitContent(r.Context(), caller, id, req.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.enrollmentView(e))
}

type verdictRequest struct {
	IsValid       bool `json:"is_valid"`
	PayoutPercent int  `json:"payout_percent"`
}

// handleVerdict is called by the verification engine. A valid verdict pays
// the creator in the same request.
func (h *Handler) handleVerdict(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	creator, ok := h.addressParam(w, r, "creator")
	if !ok {
		return
	}
	var req verdictRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	switch {
	case !req.IsValid:
		req.PayoutPercent = 0
	case req.PayoutPercent < 0 || req.PayoutPercent > 100:
		h.writeError(w, r, domain.ErrInvalidPayoutPercent)
		return
	}
	paid, err := h.svc.VerifyAndRelease(r.Context(), caller, port.VerdictReq{
		CampaignID:    id,
		Creator:       creator,
		IsValid:       req.IsValid,
		PayoutPercent: uint8(req.PayoutPercent),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"campaign_id": id,
		"creator":     creator.Hex(),
		"is_valid":    req.IsValid,
		"amount_paid": h.amounts.Format(paid),
	})
}
