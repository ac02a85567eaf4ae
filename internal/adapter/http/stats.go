package httpadapter

import (
	"net/http"
	"strconv"

	"campaign-escrow/internal/core/port"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// handleListEvents pages through the audit log. Query parameters:
// campaign_id, after (exclusive seq cursor) and limit.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	var (
		q      = r.URL.Query()
		filter port.EventFilter
	)
	if cid := q.Get("campaign_id"); cid != "" {
		id, err := strconv.ParseInt(cid, 10, 64)
		if err != nil {
			h.badRequest(w, r, "invalid campaign_id")
			return
		}
		filter.CampaignID = &id
	}
	if after := q.Get("after"); after != "" {
		seq, err := strconv.ParseInt(after, 10, 64)
		if err != nil || seq < 0 {
			h.badRequest(w, r, "invalid after")
			return
		}
		filter.AfterSeq = seq
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			h.badRequest(w, r, "invalid limit")
			return
		}
		filter.Limit = n
	}

	list, err := h.svc.ListEvents(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]eventView, 0, len(list))
	for _, ev := range list {
		out = append(out, h.eventView(ev))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// handleStatsOverview returns ledger-wide totals next to the custody
// balance. In a healthy ledger outstanding equals custody.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"campaigns":       stats.Campaigns,
		"deposited":       h.amounts.Format(stats.Deposited),
		"paid":            h.amounts.Format(stats.Paid),
		"refunded":        h.amounts.Format(stats.Refunded),
		"outstanding":     h.amounts.Format(stats.Outstanding),
		"custody":         h.amounts.Format(stats.Custody),
		"custody_address": h.svc.CustodyAddress().Hex(),
		"symbol":          h.symbol,
	})
}
