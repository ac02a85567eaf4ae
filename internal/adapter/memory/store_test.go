package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

var (
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	custody = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func newStore() *Store {
	return NewStore(domain.Authorities{Owner: owner, Verifier: owner})
}

func mint(t *testing.T, s *Store, to common.Address, amount int64) {
	t.Helper()
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		return tx.Tokens().Mint(ctx, to, amount)
	}))
}

func balance(t *testing.T, s *Store, of common.Address) int64 {
	t.Helper()
	var got int64
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		var err error
		got, err = tx.Tokens().BalanceOf(ctx, of)
		return err
	}))
	return got
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := newStore()
	mint(t, s, alice, 100)

	boom := errors.New("boom")
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		require.NoError(t, tx.Tokens().Transfer(ctx, alice, bob, 60))
		_, err := tx.Settings().AllocateCampaignID(ctx)
		require.NoError(t, err)
		_, err = tx.Events().Append(ctx, domain.Event{Type: domain.EventCampaignCreated})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.Equal(t, int64(100), balance(t, s, alice))
	require.Zero(t, balance(t, s, bob))
	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		next, err := tx.Settings().NextCampaignID(ctx)
		require.NoError(t, err)
		require.Zero(t, next)
		evs, err := tx.Events().List(ctx, port.EventFilter{})
		require.NoError(t, err)
		require.Empty(t, evs)
		return nil
	}))
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	s := newStore()
	mint(t, s, alice, 100)

	require.Panics(t, func() {
		_ = s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
			_ = tx.Tokens().Transfer(ctx, alice, bob, 100)
			panic("kaput")
		})
	})
	require.Equal(t, int64(100), balance(t, s, alice))
}

func TestWithinTxHonoursCancelledContext(t *testing.T) {
	s := newStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(context.Context, port.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestTokenLedger(t *testing.T) {
	s := newStore()
	mint(t, s, alice, 100)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.Tokens().TransferFrom(ctx, custody, alice, custody, 10)
	})
	require.ErrorIs(t, err, domain.ErrInsufficientAllowance)

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.Tokens().Approve(ctx, alice, custody, 150)
	}))

	err = s.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.Tokens().TransferFrom(ctx, custody, alice, custody, 150)
	})
	var short *domain.InsufficientFundsError
	require.ErrorAs(t, err, &short)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	require.Equal(t, int64(100), short.Have)
	require.Equal(t, int64(150), short.Need)

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		if err := tx.Tokens().TransferFrom(ctx, custody, alice, custody, 80); err != nil {
			return err
		}
		left, err := tx.Tokens().Allowance(ctx, alice, custody)
		require.NoError(t, err)
		require.Equal(t, int64(70), left)
		return nil
	}))
	require.Equal(t, int64(20), balance(t, s, alice))
	require.Equal(t, int64(80), balance(t, s, custody))
}

func TestEnrollmentOrderAndUniqueness(t *testing.T) {
	s := newStore()
	now := time.Now().UTC()

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		for _, who := range []common.Address{bob, alice} {
			if err := tx.Enrollments().Insert(ctx, domain.NewEnrollment(0, who, now)); err != nil {
				return err
			}
		}
		return nil
	}))

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		return tx.Enrollments().Insert(ctx, domain.NewEnrollment(0, bob, now))
	})
	require.ErrorIs(t, err, domain.ErrAlreadyEnrolled)

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		list, err := tx.Enrollments().ListByCampaign(ctx, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, bob, list[0].Creator)
		require.Equal(t, alice, list[1].Creator)

		_, err = tx.Enrollments().Get(ctx, 1, bob)
		require.ErrorIs(t, err, domain.ErrEnrollmentNotFound)
		return nil
	}))
}

func TestEventLogFilter(t *testing.T) {
	s := newStore()
	one, two := int64(1), int64(2)

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		for _, id := range []*int64{&one, &two, &one, nil} {
			if _, err := tx.Events().Append(ctx, domain.Event{Type: domain.EventCreatorEnrolled, CampaignID: id}); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
		all, err := tx.Events().List(ctx, port.EventFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		require.Equal(t, int64(4), all[3].Seq)

		forOne, err := tx.Events().List(ctx, port.EventFilter{CampaignID: &one})
		require.NoError(t, err)
		require.Len(t, forOne, 2)

		after, err := tx.Events().List(ctx, port.EventFilter{AfterSeq: 2, Limit: 1})
		require.NoError(t, err)
		require.Len(t, after, 1)
		require.Equal(t, int64(3), after[0].Seq)
		return nil
	}))
}

func TestViewIsReadOnly(t *testing.T) {
	s := newStore()
	mint(t, s, alice, 100)

	err := s.View(context.Background(), func(ctx context.Context, tx port.Tx) error {
		bal, err := tx.Tokens().BalanceOf(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, int64(100), bal)

		require.ErrorIs(t, tx.Tokens().Transfer(ctx, alice, bob, 10), errReadOnly)
		require.ErrorIs(t, tx.Tokens().Mint(ctx, bob, 10), errReadOnly)
		_, err = tx.Settings().AllocateCampaignID(ctx)
		require.ErrorIs(t, err, errReadOnly)
		_, err = tx.Events().Append(ctx, domain.Event{Type: domain.EventCampaignCreated})
		require.ErrorIs(t, err, errReadOnly)
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, int64(100), balance(t, s, alice))
	require.Zero(t, balance(t, s, bob))
	require.NoError(t, s.View(context.Background(), func(ctx context.Context, tx port.Tx) error {
		next, err := tx.Settings().NextCampaignID(ctx)
		require.Zero(t, next)
		return err
	}))
}

func TestViewsRunAlongsideWriters(t *testing.T) {
	s := newStore()
	mint(t, s, alice, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(context.Background(), func(ctx context.Context, tx port.Tx) error {
				return tx.Tokens().Transfer(ctx, alice, bob, 10)
			})
		}()
		go func() {
			defer wg.Done()
			_ = s.View(context.Background(), func(ctx context.Context, tx port.Tx) error {
				a, _ := tx.Tokens().BalanceOf(ctx, alice)
				b, _ := tx.Tokens().BalanceOf(ctx, bob)
				if a+b != 1000 {
					return errors.New("torn read")
				}
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, int64(900), balance(t, s, alice))
	require.Equal(t, int64(100), balance(t, s, bob))
}
