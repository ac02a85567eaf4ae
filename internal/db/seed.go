package db

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/port"
)

// ErrSeedCustody is returned when the seed names the escrow custody account.
// Custody may only hold what campaigns deposited.
var ErrSeedCustody = errors.New("seed must not credit the custody account")

// Seed tops up development token balances. Each holder is minted the
// difference between its current balance and the target, so running Seed on
// every start is idempotent. Holders that spent below their target are
// topped up again on the next start.
func Seed(ctx context.Context, store port.Store, custody common.Address, balances map[common.Address]int64) error {
	if _, ok := balances[custody]; ok {
		return ErrSeedCustody
	}
	return store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		for holder, target := range balances {
			have, err := tx.Tokens().BalanceOf(ctx, holder)
			if err != nil {
				return err
			}
			if have >= target {
				continue
			}
			if err = tx.Tokens().Mint(ctx, holder, target-have); err != nil {
				return err
			}
		}
		return nil
	})
}
