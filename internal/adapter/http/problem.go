package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"campaign-escrow/internal/core/domain"
)

// Problem is an RFC 7807 error body.
type Problem struct {
	Type     string         `json:"type,omitempty"`
	Title    string         `json:"title,omitempty"`
	Status   int            `json:"status,omitempty"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Code     string         `json:"code,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func writeTooLarge(w http.ResponseWriter, r *http.Request, err *http.MaxBytesError) {
	writeProblem(w, Problem{
		Title:    "request body too large",
		Status:   http.StatusRequestEntityTooLarge,
		Detail:   "limit is " + strconv.FormatInt(err.Limit, 10) + " bytes",
		Instance: r.URL.Path,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, Problem{
		Title:    "bad request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

// statusFor maps ledger errors onto HTTP statuses. Anything that is not a
// domain error is an internal failure.
func statusFor(err *domain.Error) int {
	switch err {
	case domain.ErrCampaignNotFound, domain.ErrEnrollmentNotFound, domain.ErrProfileNotFound:
		return http.StatusNotFound
	case domain.ErrUnauthorized:
		return http.StatusForbidden
	case domain.ErrInvalidAddress, domain.ErrInvalidAmount, domain.ErrInvalidCapacity,
		domain.ErrInvalidDuration, domain.ErrAmountOverflow, domain.ErrInvalidPayoutPercent,
		domain.ErrInvalidRole, domain.ErrEmptyName, domain.ErrEmptySubmission:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// writeError renders err as a problem. Internal errors are logged and
// hidden from the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		h.logger.Error("request failed",
			slog.String("request_id", requestIDFrom(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		writeProblem(w, Problem{
			Title:    "internal error",
			Status:   http.StatusInternalServerError,
			Instance: r.URL.Path,
		})
		return
	}

	p := Problem{
		Type:     "urn:campaign-escrow:error:" + string(de.Code),
		Title:    de.Msg,
		Status:   statusFor(de),
		Detail:   err.Error(),
		Instance: r.URL.Path,
		Code:     string(de.Code),
	}
	var funds *domain.InsufficientFundsError
	if errors.As(err, &funds) {
		p.Meta = map[string]any{
			"account": funds.Account.Hex(),
			"have":    h.amounts.Format(funds.Have),
			"need":    h.amounts.Format(funds.Need),
		}
	}
	writeProblem(w, p)
}

// writeAuthError is the walletauth middleware's failure callback.
func (h *Handler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeTooLarge(w, r, tooLarge)
		return
	}
	writeProblem(w, Problem{
		Title:    "unauthenticated",
		Status:   http.StatusUnauthorized,
		Detail:   err.Error(),
		Instance: r.URL.Path,
	})
}
