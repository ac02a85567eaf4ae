package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"campaign-escrow/internal/adapter/memory"
	"campaign-escrow/internal/adapter/usecase"
	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
	"campaign-escrow/internal/walletauth"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	verifier = common.HexToAddress("0x00000000000000000000000000000000000000a9")
	custody  = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	brand    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	creator  = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

type testServer struct {
	t      *testing.T
	router http.Handler
	store  *memory.Store
}

func newTestServer(t *testing.T, mode walletauth.Mode) *testServer {
	t.Helper()
	return newTestServerFor(t, mode, domain.Authorities{Owner: owner, Verifier: verifier})
}

func newTestServerFor(t *testing.T, mode walletauth.Mode, a domain.Authorities) *testServer {
	t.Helper()
	store := memory.NewStore(a)
	svc := usecase.NewLedgerUseCase(store, custody)
	auth, err := walletauth.New(mode, 5*time.Minute)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(svc, auth, logger, Options{BodyLimit: 1 << 12, TokenDecimals: 6, TokenSymbol: "USDC"})
	return &testServer{t: t, router: h.Router(), store: store}
}

func (s *testServer) mint(to common.Address, units int64) {
	s.t.Helper()
	err := s.store.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		return tx.Tokens().Mint(ctx, to, units)
	})
	require.NoError(s.t, err)
}

// do sends a request as caller in header mode. A zero caller sends no
// credentials.
func (s *testServer) do(method, path string, caller common.Address, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if caller != (common.Address{}) {
		req.Header.Set(walletauth.HeaderAddress, caller.Hex())
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestCampaignFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, walletauth.ModeHeader)
	s.mint(brand, 1_000_000_000)

	rec := s.do(http.MethodPost, "/api/v1/tokens/approve", brand, map[string]string{
		"spender": custody.Hex(), "amount": "300",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/campaigns", brand, map[string]any{
		"details": `{"name":"launch"}`, "reward_per_creator": "100", "max_creators": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "/api/v1/campaigns/0", rec.Header().Get("Location"))
	c := decode[campaignView](t, rec)
	require.Equal(t, "300.000000", c.TotalDeposited)
	require.Nil(t, c.Deadline)

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/enrollments", creator, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, "/api/v1/campaigns/0/enrollments/me/submission", creator, map[string]string{
		"url": "https://video.example/1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, domain.StatusSubmitted, decode[enrollmentView](t, rec).Status)

	verdictPath := "/api/v1/campaigns/0/enrollments/" + creator.Hex() + "/verdict"
	rec = s.do(http.MethodPost, verdictPath, creator, map[string]any{"is_valid": true, "payout_percent": 50})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, verdictPath, verifier, map[string]any{"is_valid": true, "payout_percent": 50})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "50.000000", decode[map[string]any](t, rec)["amount_paid"])

	rec = s.do(http.MethodPost, verdictPath, verifier, map[string]any{"is_valid": true, "payout_percent": 50})
	require.Equal(t, http.StatusConflict, rec.Code)
	p := decode[Problem](t, rec)
	require.Equal(t, string(domain.ErrAlreadyPaid.Code), p.Code)

	rec = s.do(http.MethodGet, "/api/v1/tokens/"+creator.Hex()+"/balance", common.Address{}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "50.000000", decode[map[string]string](t, rec)["balance"])

	rec = s.do(http.MethodPost, "/api/v1/campaigns/0/withdraw", brand, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "250.000000", decode[map[string]any](t, rec)["refunded"])

	rec = s.do(http.MethodGet, "/api/v1/stats/overview", common.Address{}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	require.Equal(t, stats["outstanding"], stats["custody"])

	rec = s.do(http.MethodGet, "/api/v1/events?campaign_id=0&limit=3", common.Address{}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]eventView](t, rec)
	require.Len(t, events, 3)
	require.Equal(t, domain.EventCampaignCreated, events[0].Type)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, walletauth.ModeHeader)

	rec := s.do(http.MethodPost, "/api/v1/campaigns", common.Address{}, map[string]any{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = s.do(http.MethodGet, "/api/v1/campaigns/7", common.Address{}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/campaigns/abc", common.Address{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/campaigns", brand, map[string]any{"reward_per_creator": "1.0000001", "max_creators": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/campaigns", brand, map[string]any{"unknown": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/campaigns", brand, map[string]any{"reward_per_creator": "5", "max_creators": 2})
	require.Equal(t, http.StatusConflict, rec.Code)
	p := decode[Problem](t, rec)
	require.Equal(t, string(domain.ErrInsufficientAllowance.Code), p.Code)
	require.Equal(t, "10.000000", p.Meta["need"])

	rec = s.do(http.MethodPost, "/api/v1/campaigns", brand, map[string]any{"details": string(make([]byte, 5000))})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/profiles/not-an-address", common.Address{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/healthz", common.Address{}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestProfilesAndAdmin(t *testing.T) {
	s := newTestServer(t, walletauth.ModeHeader)

	rec := s.do(http.MethodPost, "/api/v1/profiles", creator, map[string]string{"name": "Ana", "role": "creator"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/v1/profiles", creator, map[string]string{"name": "Ana", "role": "creator"})
	require.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(http.MethodPost, "/api/v1/profiles", brand, map[string]string{"name": "Acme", "role": "admin"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/profiles", common.Address{}, nil)
	require.Equal(t, []string{creator.Hex()}, decode[[]string](t, rec))

	rec = s.do(http.MethodGet, "/api/v1/profiles/"+creator.Hex(), common.Address{}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Ana", decode[profileView](t, rec).Name)

	rec = s.do(http.MethodPut, "/api/v1/admin/verifier", brand, map[string]string{"address": brand.Hex()})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPut, "/api/v1/admin/verifier", owner, map[string]string{"address": "0x0000000000000000000000000000000000000000"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPut, "/api/v1/admin/verifier", owner, map[string]string{"address": brand.Hex()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, brand.Hex(), decode[map[string]string](t, rec)["verifier"])
}

func TestSignedRequests(t *testing.T) {
	s := newTestServer(t, walletauth.ModeSignature)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	body := []byte(`{"name":"Signed","role":"brand"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profiles", bytes.NewReader(body))
	require.NoError(t, walletauth.SignRequest(req, key, body, time.Now()))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), decode[profileView](t, rec).Wallet)

	// header-only credentials are refused in signature mode
	rec = s.do(http.MethodPost, "/api/v1/profiles", brand, map[string]string{"name": "Acme", "role": "brand"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReplayedAdminRequestIsRefused(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	admin := crypto.PubkeyToAddress(key.PublicKey)
	s := newTestServerFor(t, walletauth.ModeSignature, domain.Authorities{Owner: admin, Verifier: verifier})

	at := time.Now()
	send := func(body []byte, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/verifier", bytes.NewReader(body))
		if header != nil {
			req.Header = header.Clone()
		} else {
			require.NoError(t, walletauth.SignRequest(req, key, body, at))
		}
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	revoked := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	current := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	toRevoked := []byte(`{"address":"` + revoked.Hex() + `"}`)

	first := httptest.NewRequest(http.MethodPut, "/api/v1/admin/verifier", bytes.NewReader(toRevoked))
	require.NoError(t, walletauth.SignRequest(first, key, toRevoked, at))
	captured := first.Header.Clone()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send([]byte(`{"address":"`+current.Hex()+`"}`), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = send(toRevoked, captured)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), walletauth.ErrReplayed.Error())

	rec = s.do(http.MethodGet, "/api/v1/admin/authorities", common.Address{}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, current.Hex(), decode[map[string]string](t, rec)["verifier"])
}
