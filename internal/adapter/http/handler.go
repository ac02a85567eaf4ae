package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
	"campaign-escrow/internal/walletauth"
)

// Options tunes the HTTP adapter.
type Options struct {
	// BodyLimit caps request bodies in bytes. Zero disables the cap.
	BodyLimit int64
	// TokenDecimals and TokenSymbol describe the custody token for amount
	// rendering.
	TokenDecimals int32
	TokenSymbol   string
}

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the ledger usecase, the wallet authenticator and a logger;
// routes are registered on a chi.Router.
type Handler struct {
	svc     port.LedgerUseCase
	auth    *walletauth.Authenticator
	logger  *slog.Logger
	amounts amountCodec
	symbol  string
	router  chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.LedgerUseCase, auth *walletauth.Authenticator, logger *slog.Logger, opts Options) *Handler {
	h := &Handler{
		svc:     svc,
		auth:    auth,
		logger:  logger,
		amounts: amountCodec{decimals: opts.TokenDecimals},
		symbol:  opts.TokenSymbol,
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(h.accessLog)

	r.Get("/healthz", h.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(bodyLimit(opts.BodyLimit))
		r.Use(auth.Middleware(h.writeAuthError))

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.handleCreateCampaign)
			r.Get("/", h.handleListCampaigns)
			r.Get("/next-id", h.handleNextCampaignID)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetCampaign)
				r.Patch("/status", h.handleToggleStatus)
				r.Post("/withdraw", h.handleWithdraw)

				r.Post("/enrollments", h.handleEnroll)
				r.Get("/enrollments", h.handleListEnrollments)
				r.Put("/enrollments/me/submission", h.handleSubmit)
				r.Get("/enrollments/{creator}", h.handleGetEnrollment)
				r.Get("/enrollments/{creator}/exists", h.handleHasEnrolled)
				r.Post("/enrollments/{creator}/verdict", h.handleVerdict)
			})
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", h.handleRegisterProfile)
			r.Get("/", h.handleListProfiles)
			r.Get("/{address}", h.handleGetProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/authorities", h.handleAuthorities)
			r.Put("/verifier", h.handleUpdateVerifier)
			r.Put("/owner", h.handleTransferOwnership)
		})

		r.Route("/tokens", func(r chi.Router) {
			r.Post("/approve", h.handleApprove)
			r.Get("/{address}/balance", h.handleBalance)
			r.Get("/{owner}/allowances/{spender}", h.handleAllowance)
		})

		r.Get("/events", h.handleListEvents)
		r.Get("/stats/overview", h.handleStatsOverview)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; the status line is already out
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// decodeJSON strictly decodes the body into v and reports a problem on
// failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeTooLarge(w, r, tooLarge)
		return false
	}
	h.badRequest(w, r, "invalid JSON: "+err.Error())
	return false
}

// caller returns the authenticated wallet or writes 401.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	c, ok := walletauth.CallerFrom(r.Context())
	if !ok {
		writeProblem(w, Problem{
			Title:    "unauthenticated",
			Status:   http.StatusUnauthorized,
			Detail:   "wallet credentials required",
			Instance: r.URL.Path,
		})
	}
	return c, ok
}

func (h *Handler) campaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 0 {
		h.badRequest(w, r, "invalid campaign id")
		return 0, false
	}
	return id, true
}

// addressParam parses a path address. The zero address is accepted here
// because lookups of it simply find nothing.
func (h *Handler) addressParam(w http.ResponseWriter, r *http.Request, name string) (common.Address, bool) {
	raw := chi.URLParam(r, name)
	if !common.IsHexAddress(raw) {
		h.writeError(w, r, domain.ErrInvalidAddress)
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
