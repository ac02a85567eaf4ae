package httpadapter

import (
	"net/http"

	"campaign-escrow/internal/core/domain"
)

type approveRequest struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// handleApprove sets the caller's allowance. Brands approve the custody
// address before creating a campaign.
func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req approveRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	spender, err := domain.ParseAddress(req.Spender)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	amount, err := h.amounts.Parse(req.Amount)
	if err != nil {
		h.badRequest(w, r, "amount: "+err.Error())
		return
	}
	if err = h.svc.Approve(r.Context(), caller, spender, amount); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"owner":   caller.Hex(),
		"spender": spender.Hex(),
		"amount":  h.amounts.Format(amount),
	})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.addressParam(w, r, "address")
	if !ok {
		return
	}
	bal, err := h.svc.BalanceOf(r.Context(), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.Hex(),
		"balance": h.amounts.Format(bal),
		"symbol":  h.symbol,
	})
}

func (h *Handler) handleAllowance(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.addressParam(w, r, "owner")
	if !ok {
		return
	}
	spender, ok := h.addressParam(w, r, "spender")
	if !ok {
		return
	}
	left, err := h.svc.Allowance(r.Context(), owner, spender)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"owner":     owner.Hex(),
		"spender":   spender.Hex(),
		"allowance": h.amounts.Format(left),
	})
}
