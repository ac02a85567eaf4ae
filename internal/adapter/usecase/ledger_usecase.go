package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// LedgerUseCase provides the escrow business logic. It orchestrates the
// domain rules and the store to implement port.LedgerUseCase. Every mutating
// operation runs in a single store transaction; events recorded during the
// transaction are published only after it commits.
type LedgerUseCase struct {
	store   port.Store
	pub     port.EventPublisher
	custody common.Address

	// now is the clock used for timestamps and deadline checks.
	now func() time.Time
}

var _ port.LedgerUseCase = (*LedgerUseCase)(nil)

// Option customises a LedgerUseCase.
type Option func(*LedgerUseCase)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(u *LedgerUseCase) { u.now = now }
}

// WithPublisher sets the subscriber fan-out for committed events.
func WithPublisher(pub port.EventPublisher) Option {
	return func(u *LedgerUseCase) { u.pub = pub }
}

// NewLedgerUseCase creates a usecase over store. custody is the token
// account escrowed funds are held in.
func NewLedgerUseCase(store port.Store, custody common.Address, opts ...Option) *LedgerUseCase {
	u := &LedgerUseCase{
		store:   store,
		custody: custody,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CustodyAddress returns the escrow account.
func (u *LedgerUseCase) CustodyAddress() common.Address { return u.custody }

// recorder collects the events appended by one transaction.
type recorder struct {
	tx     port.Tx
	at     time.Time
	stored []domain.Event
}

func (r *recorder) emit(ctx context.Context, ev domain.Event) error {
	ev.CreatedAt = r.at
	stored, err := r.tx.Events().Append(ctx, ev)
	if err != nil {
		return err
	}
	r.stored = append(r.stored, stored)
	return nil
}

// mutate runs fn in a transaction and publishes its events after commit.
func (u *LedgerUseCase) mutate(ctx context.Context, fn func(ctx context.Context, tx port.Tx, rec *recorder) error) error {
	var rec *recorder
	err := u.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		rec = &recorder{tx: tx, at: u.now()}
		return fn(ctx, tx, rec)
	})
	if err != nil {
		return err
	}
	if u.pub != nil && len(rec.stored) > 0 {
		u.pub.Publish(ctx, rec.stored)
	}
	return nil
}

// read runs fn against committed state.
func (u *LedgerUseCase) read(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	return u.store.View(ctx, fn)
}

func ptr[T any](v T) *T { return &v }
