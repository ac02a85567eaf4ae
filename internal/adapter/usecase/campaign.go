package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// CreateCampaign allocates the next campaign id, pulls the full budget from
// the brand into custody and stores the campaign. It fails without side
// effects when the brand has not approved or does not hold the deposit.
func (u *LedgerUseCase) CreateCampaign(ctx context.Context, caller common.Address, req port.CreateCampaignReq) (domain.Campaign, error) {
	var created domain.Campaign
	err := u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		id, err := tx.Settings().AllocateCampaignID(ctx)
		if err != nil {
			return err
		}
		c, err := domain.NewCampaign(id, domain.CampaignParams{
			Brand:            caller,
			Details:          req.Details,
			RewardPerCreator: req.RewardPerCreator,
			MaxCreators:      req.MaxCreators,
			DurationDays:     req.DurationDays,
		}, rec.at)
		if err != nil {
			return err
		}
		if err = tx.Tokens().TransferFrom(ctx, u.custody, caller, u.custody, c.TotalDeposited); err != nil {
			return fmt.Errorf("fund campaign: %w", err)
		}
		if err = tx.Campaigns().Insert(ctx, c); err != nil {
			return err
		}
		if err = rec.emit(ctx, domain.Event{
			Type:       domain.EventCampaignCreated,
			CampaignID: ptr(c.ID),
			Actor:      caller,
			Amount:     c.RewardPerCreator,
		}); err != nil {
			return err
		}
		if err = rec.emit(ctx, domain.Event{
			Type:       domain.EventCampaignFunded,
			CampaignID: ptr(c.ID),
			Actor:      caller,
			Amount:     c.TotalDeposited,
		}); err != nil {
			return err
		}
		created = c
		return nil
	})
	return created, err
}

// ToggleCampaignStatus opens or pauses enrollment without touching funds or
// existing enrollments.
func (u *LedgerUseCase) ToggleCampaignStatus(ctx context.Context, caller common.Address, campaignID int64, active bool) (domain.Campaign, error) {
	var updated domain.Campaign
	err := u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		c, err := tx.Campaigns().GetForUpdate(ctx, campaignID)
		if err != nil {
			return err
		}
		if err = c.SetActive(caller, active); err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, c); err != nil {
			return err
		}
		detail := "paused"
		if active {
			detail = "active"
		}
		updated = c
		return rec.emit(ctx, domain.Event{
			Type:       domain.EventCampaignStatusChanged,
			CampaignID: ptr(c.ID),
			Actor:      caller,
			Detail:     detail,
		})
	})
	return updated, err
}

// WithdrawRemainingFunds closes the campaign, then returns the unspent
// custody to the brand.
func (u *LedgerUseCase) WithdrawRemainingFunds(ctx context.Context, caller common.Address, campaignID int64) (int64, error) {
	var refunded int64
	err := u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		c, err := tx.Campaigns().GetForUpdate(ctx, campaignID)
		if err != nil {
			return err
		}
		amount, err := c.Withdraw(caller)
		if err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, c); err != nil {
			return err
		}
		if err = tx.Tokens().Transfer(ctx, u.custody, c.Brand, amount); err != nil {
			return fmt.Errorf("refund brand: %w", err)
		}
		refunded = amount
		return rec.emit(ctx, domain.Event{
			Type:       domain.EventFundsWithdrawn,
			CampaignID: ptr(c.ID),
			Actor:      caller,
			Subject:    c.Brand,
			Amount:     amount,
		})
	})
	return refunded, err
}

// GetCampaign returns a campaign by id.
func (u *LedgerUseCase) GetCampaign(ctx context.Context, campaignID int64) (domain.Campaign, error) {
	var c domain.Campaign
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		c, err = tx.Campaigns().Get(ctx, campaignID)
		return err
	})
	return c, err
}

// ListCampaigns returns every campaign in id order.
func (u *LedgerUseCase) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	var list []domain.Campaign
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		list, err = tx.Campaigns().List(ctx)
		return err
	})
	return list, err
}

// NextCampaignID returns the id the next campaign will receive.
func (u *LedgerUseCase) NextCampaignID(ctx context.Context) (int64, error) {
	var next int64
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		next, err = tx.Settings().NextCampaignID(ctx)
		return err
	})
	return next, err
}
