package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// UpdateVerifier replaces the attester. Verdicts from the previous verifier
// are rejected from the next transaction on.
func (u *LedgerUseCase) UpdateVerifier(ctx context.Context, caller, verifier common.Address) error {
	return u.rotate(ctx, caller, verifier, domain.EventVerifierUpdated, func(a *domain.Authorities) common.Address {
		prev := a.Verifier
		a.Verifier = verifier
		return prev
	})
}

// TransferOwnership hands the owner role to owner. Owner only.
func (u *LedgerUseCase) TransferOwnership(ctx context.Context, caller, owner common.Address) error {
	return u.rotate(ctx, caller, owner, domain.EventOwnershipTransferred, func(a *domain.Authorities) common.Address {
		prev := a.Owner
		a.Owner = owner
		return prev
	})
}

// rotate applies set under the owner check and records who was replaced.
func (u *LedgerUseCase) rotate(ctx context.Context, caller, next common.Address, typ domain.EventType, set func(*domain.Authorities) common.Address) error {
	if next == (common.Address{}) {
		return domain.ErrInvalidAddress
	}
	return u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		auth, err := tx.Settings().LockAuthorities(ctx)
		if err != nil {
			return err
		}
		if err = auth.RequireOwner(caller); err != nil {
			return err
		}
		prev := set(&auth)
		if err = tx.Settings().SetAuthorities(ctx, auth); err != nil {
			return err
		}
		return rec.emit(ctx, domain.Event{
			Type:    typ,
			Actor:   caller,
			Subject: next,
			Detail:  prev.Hex(),
		})
	})
}

// Authorities returns the current owner and verifier.
func (u *LedgerUseCase) Authorities(ctx context.Context) (domain.Authorities, error) {
	var a domain.Authorities
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		a, err = tx.Settings().Authorities(ctx)
		return err
	})
	return a, err
}
