package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// RegisterProfile stores the caller's write-once profile.
func (u *LedgerUseCase) RegisterProfile(ctx context.Context, caller common.Address, req port.RegisterProfileReq) (domain.Profile, error) {
	var stored domain.Profile
	err := u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		p, err := domain.NewProfile(caller, req.Name, req.Bio, req.Avatar, req.Role, rec.at)
		if err != nil {
			return err
		}
		if err = tx.Profiles().Insert(ctx, p); err != nil {
			return err
		}
		stored = p
		return rec.emit(ctx, domain.Event{
			Type:   domain.EventProfileRegistered,
			Actor:  caller,
			Detail: string(p.Role),
		})
	})
	return stored, err
}

// GetProfile returns the profile registered by wallet.
func (u *LedgerUseCase) GetProfile(ctx context.Context, wallet common.Address) (domain.Profile, error) {
	var p domain.Profile
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		p, err = tx.Profiles().Get(ctx, wallet)
		return err
	})
	return p, err
}

// ListProfileAddresses returns registered wallets in registration order.
func (u *LedgerUseCase) ListProfileAddresses(ctx context.Context) ([]common.Address, error) {
	var list []common.Address
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		list, err = tx.Profiles().ListAddresses(ctx)
		return err
	})
	return list, err
}
