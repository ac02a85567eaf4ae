package usecase

import (
	"context"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// GetStats sums campaign amounts and reads the custody balance in the same
// transaction, so Outstanding and Custody are comparable.
func (u *LedgerUseCase) GetStats(ctx context.Context) (*port.StatsResp, error) {
	var resp *port.StatsResp
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		t, err := tx.Campaigns().Totals(ctx)
		if err != nil {
			return err
		}
		custody, err := tx.Tokens().BalanceOf(ctx, u.custody)
		if err != nil {
			return err
		}
		resp = &port.StatsResp{
			Campaigns:   t.Campaigns,
			Deposited:   t.Deposited,
			Paid:        t.Paid,
			Refunded:    t.Refunded,
			Outstanding: t.Deposited - t.Paid - t.Refunded,
			Custody:     custody,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListEvents pages through the audit log in seq order.
func (u *LedgerUseCase) ListEvents(ctx context.Context, filter port.EventFilter) ([]domain.Event, error) {
	var list []domain.Event
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		list, err = tx.Events().List(ctx, filter)
		return err
	})
	return list, err
}
