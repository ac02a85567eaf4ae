package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/port"
)

// BalanceOf returns holder's token balance in base units.
func (u *LedgerUseCase) BalanceOf(ctx context.Context, holder common.Address) (int64, error) {
	var bal int64
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		bal, err = tx.Tokens().BalanceOf(ctx, holder)
		return err
	})
	return bal, err
}

// Allowance returns what spender may still pull from owner.
func (u *LedgerUseCase) Allowance(ctx context.Context, owner, spender common.Address) (int64, error) {
	var left int64
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		left, err = tx.Tokens().Allowance(ctx, owner, spender)
		return err
	})
	return left, err
}

// Approve overwrites the caller's allowance. Brands approve the custody
// account before creating a campaign.
func (u *LedgerUseCase) Approve(ctx context.Context, caller, spender common.Address, amount int64) error {
	return u.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		return tx.Tokens().Approve(ctx, caller, spender, amount)
	})
}
