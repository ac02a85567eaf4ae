package walletauth

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newSigned(t *testing.T, method, path string, body []byte, at time.Time) (*http.Request, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, SignRequest(r, key, body, at))
	return r, crypto.PubkeyToAddress(key.PublicKey)
}

func newAuth(t *testing.T, mode Mode) *Authenticator {
	t.Helper()
	a, err := New(mode, 5*time.Minute, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return a
}

func TestSignRecoverRoundTrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	msg := Message(http.MethodPost, "/api/v1/campaigns", now.Unix(), []byte(`{}`))

	sig, err := Sign(key, msg)
	require.NoError(t, err)
	require.Contains(t, []byte{27, 28}, sig[64])

	got, err := Recover(msg, sig)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), got)

	_, err = Recover(msg, sig[:10])
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestAuthenticateSignature(t *testing.T) {
	a := newAuth(t, ModeSignature)
	body := []byte(`{"details":"x"}`)

	r, addr := newSigned(t, http.MethodPost, "/api/v1/campaigns", body, now)
	got, err := a.Authenticate(r)
	require.NoError(t, err)
	require.Equal(t, addr, got)

	// the body is still readable by the handler
	rest, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.Equal(t, body, rest)
}

func TestAuthenticateRejects(t *testing.T) {
	a := newAuth(t, ModeSignature)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil)
	_, err := a.Authenticate(r)
	require.ErrorIs(t, err, ErrNoCredentials)

	r, _ = newSigned(t, http.MethodPost, "/api/v1/campaigns", []byte(`{}`), now.Add(-time.Hour))
	_, err = a.Authenticate(r)
	require.ErrorIs(t, err, ErrStaleTimestamp)

	// signed for a different body
	r, _ = newSigned(t, http.MethodPost, "/api/v1/campaigns", []byte(`{"a":1}`), now)
	r.Body = io.NopCloser(bytes.NewReader([]byte(`{"a":2}`)))
	_, err = a.Authenticate(r)
	require.ErrorIs(t, err, ErrWrongSigner)

	// claims somebody else's address
	r, _ = newSigned(t, http.MethodPost, "/api/v1/campaigns", nil, now)
	r.Header.Set(HeaderAddress, "0x00000000000000000000000000000000000000b1")
	_, err = a.Authenticate(r)
	require.ErrorIs(t, err, ErrWrongSigner)

	r, _ = newSigned(t, http.MethodPost, "/api/v1/campaigns", nil, now)
	r.Header.Set(HeaderSignature, "nothex")
	_, err = a.Authenticate(r)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestHeaderMode(t *testing.T) {
	a := newAuth(t, ModeHeader)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderAddress, "0x00000000000000000000000000000000000000b1")

	got, err := a.Authenticate(r)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000000b1"), got)

	r.Header.Set(HeaderAddress, "bob")
	_, err = a.Authenticate(r)
	require.ErrorIs(t, err, ErrBadAddress)

	_, err = New("magic", time.Minute)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	a := newAuth(t, ModeSignature)
	var (
		seen    common.Address
		hasSeen bool
		failed  error
	)
	h := a.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		failed = err
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, hasSeen = CallerFrom(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, hasSeen)

	r, addr := newSigned(t, http.MethodGet, "/", nil, now)
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.True(t, hasSeen)
	require.Equal(t, addr, seen)

	r, _ = newSigned(t, http.MethodGet, "/", nil, now.Add(time.Hour))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.ErrorIs(t, failed, ErrStaleTimestamp)
}

func TestAuthenticateRejectsReplay(t *testing.T) {
	clock := now
	a, err := New(ModeSignature, 5*time.Minute, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	body := []byte(`{"address":"0x00000000000000000000000000000000000000bb"}`)
	signed := func(b []byte) *http.Request {
		r := httptest.NewRequest(http.MethodPut, "/api/v1/admin/verifier", bytes.NewReader(b))
		require.NoError(t, SignRequest(r, key, b, now))
		return r
	}

	first := signed(body)
	_, err = a.Authenticate(first)
	require.NoError(t, err)

	replay := httptest.NewRequest(http.MethodPut, "/api/v1/admin/verifier", bytes.NewReader(body))
	replay.Header = first.Header.Clone()
	_, err = a.Authenticate(replay)
	require.ErrorIs(t, err, ErrReplayed)

	// same message with V re-encoded as 0/1
	sig, err := hexutil.Decode(first.Header.Get(HeaderSignature))
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] -= 27
	reencoded := httptest.NewRequest(http.MethodPut, "/api/v1/admin/verifier", bytes.NewReader(body))
	reencoded.Header = first.Header.Clone()
	reencoded.Header.Set(HeaderSignature, hexutil.Encode(sig))
	_, err = a.Authenticate(reencoded)
	require.ErrorIs(t, err, ErrReplayed)

	// a different body in the same second is a new request
	_, err = a.Authenticate(signed([]byte(`{"address":"0x00000000000000000000000000000000000000cc"}`)))
	require.NoError(t, err)

	// once the window has passed the skew check takes over
	clock = now.Add(6 * time.Minute)
	replay = httptest.NewRequest(http.MethodPut, "/api/v1/admin/verifier", bytes.NewReader(body))
	replay.Header = first.Header.Clone()
	_, err = a.Authenticate(replay)
	require.ErrorIs(t, err, ErrStaleTimestamp)
}
