package httpadapter

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
)

type addressRequest struct {
	Address string `json:"address"`
}

func (h *Handler) handleAuthorities(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Authorities(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"owner":    a.Owner.Hex(),
		"verifier": a.Verifier.Hex(),
		"custody":  h.svc.CustodyAddress().Hex(),
	})
}

func (h *Handler) handleUpdateVerifier(w http.ResponseWriter, r *http.Request) {
	h.rotate(w, r, h.svc.UpdateVerifier)
}

func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	h.rotate(w, r, h.svc.TransferOwnership)
}

func (h *Handler) rotate(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, caller, next common.Address) error) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req addressRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	next, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = apply(r.Context(), caller, next); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.handleAuthorities(w, r)
}
