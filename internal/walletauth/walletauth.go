// Package walletauth authenticates HTTP callers as wallet addresses.
//
// A signed request carries three headers:
//
//	X-Wallet-Address:   0x-prefixed account address
//	X-Wallet-Timestamp: unix seconds
//	X-Wallet-Signature: 0x-prefixed 65 byte EIP-191 personal_sign signature
//
// The signed message binds the method, path, timestamp and a keccak256
// digest of the body, so a captured signature cannot be replayed against a
// different request or after MaxSkew. Within MaxSkew each signed request is
// accepted once; a repeat of the same message from the same wallet fails
// with ErrReplayed.
package walletauth

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	HeaderAddress   = "X-Wallet-Address"
	HeaderTimestamp = "X-Wallet-Timestamp"
	HeaderSignature = "X-Wallet-Signature"
)

// Mode selects how much the authenticator trusts the request.
type Mode string

const (
	// ModeSignature requires a valid signature from the claimed address.
	ModeSignature Mode = "signature"
	// ModeHeader trusts X-Wallet-Address as is. Local development only.
	ModeHeader Mode = "header"
)

var (
	ErrNoCredentials  = errors.New("wallet credentials missing")
	ErrBadAddress     = errors.New("malformed wallet address")
	ErrBadTimestamp   = errors.New("malformed wallet timestamp")
	ErrStaleTimestamp = errors.New("wallet timestamp outside allowed skew")
	ErrBadSignature   = errors.New("malformed wallet signature")
	ErrWrongSigner    = errors.New("signature does not match wallet address")
	ErrReplayed       = errors.New("signed request already used")
)

// DefaultReplayCacheSize bounds how many accepted requests are remembered
// for replay detection.
const DefaultReplayCacheSize = 1 << 16

// Message builds the text a wallet signs for one request.
func Message(method, path string, ts int64, body []byte) []byte {
	return fmt.Appendf(nil, "campaign-escrow request\n%s %s\n%d\n%s",
		method, path, ts, hexutil.Encode(crypto.Keccak256(body)))
}

// Sign produces a personal_sign signature over msg with V in {27, 28}, the
// form browser wallets return.
func Sign(key *ecdsa.PrivateKey, msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// Recover returns the address that produced sig over msg.
func Recover(msg, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrBadSignature
	}
	s := make([]byte, len(sig))
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(msg), s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Authenticator resolves the caller of an HTTP request.
type Authenticator struct {
	mode    Mode
	maxSkew time.Duration
	now     func() time.Time

	mu sync.Mutex
	// seen maps a (wallet, message) digest to the time its timestamp
	// leaves the skew window.
	seen      lru.BasicLRU[common.Hash, time.Time]
	seenLimit int
}

// Option customises an Authenticator.
type Option func(*Authenticator)

// WithClock replaces the wall clock used for the skew check.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithReplayCacheSize sets how many accepted requests are remembered. Once
// full the oldest entry is forgotten first.
func WithReplayCacheSize(n int) Option {
	return func(a *Authenticator) {
		if n > 0 {
			a.seenLimit = n
		}
	}
}

// New validates mode and returns an Authenticator.
func New(mode Mode, maxSkew time.Duration, opts ...Option) (*Authenticator, error) {
	switch mode {
	case ModeSignature, ModeHeader:
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
	a := &Authenticator{mode: mode, maxSkew: maxSkew, now: time.Now, seenLimit: DefaultReplayCacheSize}
	for _, opt := range opts {
		opt(a)
	}
	a.seen = lru.NewBasicLRU[common.Hash, time.Time](a.seenLimit)
	return a, nil
}

// Authenticate returns the wallet that made r. The body is read in full and
// replaced, so handlers can still decode it.
func (a *Authenticator) Authenticate(r *http.Request) (common.Address, error) {
	raw := r.Header.Get(HeaderAddress)
	if raw == "" {
		return common.Address{}, ErrNoCredentials
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, ErrBadAddress
	}
	claimed := common.HexToAddress(raw)
	if a.mode == ModeHeader {
		return claimed, nil
	}

	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return common.Address{}, ErrBadTimestamp
	}
	if skew := a.now().Sub(time.Unix(ts, 0)); skew > a.maxSkew || skew < -a.maxSkew {
		return common.Address{}, ErrStaleTimestamp
	}
	sig, err := hexutil.Decode(r.Header.Get(HeaderSignature))
	if err != nil {
		return common.Address{}, ErrBadSignature
	}

	var body []byte
	if r.Body != nil {
		if body, err = io.ReadAll(r.Body); err != nil {
			return common.Address{}, err
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	msg := Message(r.Method, r.URL.Path, ts, body)
	signer, err := Recover(msg, sig)
	if err != nil {
		return common.Address{}, err
	}
	if signer != claimed {
		return common.Address{}, ErrWrongSigner
	}
	if err = a.markUsed(signer, msg, time.Unix(ts, 0).Add(a.maxSkew)); err != nil {
		return common.Address{}, err
	}
	return signer, nil
}

// markUsed records a verified message until expires and fails if it was
// already recorded. The key is the message, not the signature encoding.
func (a *Authenticator) markUsed(signer common.Address, msg []byte, expires time.Time) error {
	key := crypto.Keccak256Hash(signer.Bytes(), msg)

	a.mu.Lock()
	defer a.mu.Unlock()
	if until, ok := a.seen.Peek(key); ok && a.now().Before(until) {
		return ErrReplayed
	}
	a.seen.Add(key, expires)
	return nil
}

// SignRequest sets the wallet headers on r for the key's address. It is
// what a client (or a test) does before sending r.
func SignRequest(r *http.Request, key *ecdsa.PrivateKey, body []byte, at time.Time) error {
	ts := at.Unix()
	sig, err := Sign(key, Message(r.Method, r.URL.Path, ts, body))
	if err != nil {
		return err
	}
	r.Header.Set(HeaderAddress, crypto.PubkeyToAddress(key.PublicKey).Hex())
	r.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	r.Header.Set(HeaderSignature, hexutil.Encode(sig))
	return nil
}

type callerKey struct{}

// WithCaller stores the authenticated wallet in ctx.
func WithCaller(ctx context.Context, caller common.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the wallet stored by WithCaller.
func CallerFrom(ctx context.Context) (common.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(common.Address)
	return caller, ok
}

// Middleware authenticates requests that carry wallet credentials and
// stores the caller in the request context. Requests without credentials
// pass through anonymously; handlers that need a caller reject them.
// Invalid credentials are reported through onError.
func (a *Authenticator) Middleware(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := a.Authenticate(r)
			switch {
			case errors.Is(err, ErrNoCredentials):
				next.ServeHTTP(w, r)
			case err != nil:
				onError(w, r, err)
			default:
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
			}
		})
	}
}
