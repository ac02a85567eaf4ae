package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// VerifyAndRelease is the single path that pays creators out of custody.
// Bookkeeping (enrollment status, campaign totals) is written before the
// token transfer, and all of it shares one transaction.
func (u *LedgerUseCase) VerifyAndRelease(ctx context.Context, caller common.Address, req port.VerdictReq) (int64, error) {
	var released int64
	err := u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		auth, err := tx.Settings().Authorities(ctx)
		if err != nil {
			return err
		}
		agent := auth.Agent()
		if err = agent.Authorize(caller); err != nil {
			return err
		}

		c, err := tx.Campaigns().GetForUpdate(ctx, req.CampaignID)
		if err != nil {
			return err
		}
		e, err := tx.Enrollments().Get(ctx, req.CampaignID, req.Creator)
		if err != nil {
			return err
		}
		verdict := domain.Verdict{Valid: req.IsValid, PayoutPercent: req.PayoutPercent}
		amount, err := domain.ApplyVerdict(&c, &e, agent, caller, verdict, rec.at)
		if err != nil {
			return err
		}

		if err = tx.Enrollments().Update(ctx, e); err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, c); err != nil {
			return err
		}
		if amount > 0 {
			if err = tx.Tokens().Transfer(ctx, u.custody, e.Creator, amount); err != nil {
				return fmt.Errorf("release payment: %w", err)
			}
		}

		if err = rec.emit(ctx, domain.Event{
			Type:       domain.EventSubmissionVerified,
			CampaignID: ptr(c.ID),
			Actor:      caller,
			Subject:    e.Creator,
			Success:    ptr(req.IsValid),
			Detail:     e.SubmissionURL,
		}); err != nil {
			return err
		}
		if req.IsValid {
			if err = rec.emit(ctx, domain.Event{
				Type:       domain.EventPaymentReleased,
				CampaignID: ptr(c.ID),
				Actor:      caller,
				Subject:    e.Creator,
				Amount:     amount,
				Detail:     strconv.Itoa(int(req.PayoutPercent)),
			}); err != nil {
				return err
			}
		}
		released = amount
		return nil
	})
	return released, err
}
