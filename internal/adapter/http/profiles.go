package httpadapter

import (
	"net/http"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

type registerProfileRequest struct {
	Name   string      `json:"name"`
	Bio    string      `json:"bio"`
	Avatar string      `json:"avatar"`
	Role   domain.Role `json:"role"`
}

func (h *Handler) handleRegisterProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req registerProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.RegisterProfile(r.Context(), caller, port.RegisterProfileReq(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, profileViewOf(p))
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListProfileAddresses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Hex())
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.addressParam(w, r, "address")
	if !ok {
		return
	}
	p, err := h.svc.GetProfile(r.Context(), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profileViewOf(p))
}
