package usecase

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// Enroll joins caller to the campaign. Checks run in a fixed order: campaign
// exists, is open, deadline, duplicate enrollment, capacity.
func (u *LedgerUseCase) Enroll(ctx context.Context, caller common.Address, campaignID int64) (domain.Enrollment, error) {
	if caller == (common.Address{}) {
		return domain.Enrollment{}, domain.ErrInvalidAddress
	}
	var joined domain.Enrollment
	err := u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		c, err := tx.Campaigns().GetForUpdate(ctx, campaignID)
		if err != nil {
			return err
		}
		if err = c.CheckEnroll(rec.at); err != nil {
			return err
		}
		_, err = tx.Enrollments().Get(ctx, campaignID, caller)
		switch {
		case err == nil:
			return domain.ErrAlreadyEnrolled
		case !errors.Is(err, domain.ErrEnrollmentNotFound):
			return err
		}
		if err = c.CheckCapacity(); err != nil {
			return err
		}

		e := domain.NewEnrollment(campaignID, caller, rec.at)
		if err = tx.Enrollments().Insert(ctx, e); err != nil {
			return err
		}
		c.EnrolledCount++
		if err = tx.Campaigns().Update(ctx, c); err != nil {
			return err
		}
		joined = e
		return rec.emit(ctx, domain.Event{
			Type:       domain.EventCreatorEnrolled,
			CampaignID: ptr(campaignID),
			Actor:      caller,
		})
	})
	return joined, err
}

// SubmitContent stores the caller's proof-of-work URL, replacing any earlier
// one. A rejected enrollment becomes eligible for a new verdict.
func (u *LedgerUseCase) SubmitContent(ctx context.Context, caller common.Address, campaignID int64, url string) (domain.Enrollment, error) {
	if url == "" {
		return domain.Enrollment{}, domain.ErrEmptySubmission
	}
	var updated domain.Enrollment
	err := u.mutate(ctx, func(ctx context.Context, tx port.Tx, rec *recorder) error {
		c, err := tx.Campaigns().GetForUpdate(ctx, campaignID)
		if err != nil {
			return err
		}
		if err = c.CheckSubmit(rec.at); err != nil {
			return err
		}
		e, err := tx.Enrollments().Get(ctx, campaignID, caller)
		if err != nil {
			return err
		}
		if err = e.Submit(url, rec.at); err != nil {
			return err
		}
		if err = tx.Enrollments().Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return rec.emit(ctx, domain.Event{
			Type:       domain.EventContentSubmitted,
			CampaignID: ptr(campaignID),
			Actor:      caller,
			Detail:     url,
		})
	})
	return updated, err
}

// GetCampaignEnrollments lists a campaign's enrollments in join order.
func (u *LedgerUseCase) GetCampaignEnrollments(ctx context.Context, campaignID int64) ([]domain.Enrollment, error) {
	var list []domain.Enrollment
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		if _, err := tx.Campaigns().Get(ctx, campaignID); err != nil {
			return err
		}
		var err error
		list, err = tx.Enrollments().ListByCampaign(ctx, campaignID)
		return err
	})
	return list, err
}

// GetEnrollment returns one creator's enrollment.
func (u *LedgerUseCase) GetEnrollment(ctx context.Context, campaignID int64, creator common.Address) (domain.Enrollment, error) {
	var e domain.Enrollment
	err := u.read(ctx, func(ctx context.Context, tx port.Tx) error {
		var err error
		e, err = tx.Enrollments().Get(ctx, campaignID, creator)
		return err
	})
	return e, err
}

// HasEnrolled reports whether creator joined the campaign.
func (u *LedgerUseCase) HasEnrolled(ctx context.Context, campaignID int64, creator common.Address) (bool, error) {
	_, err := u.GetEnrollment(ctx, campaignID, creator)
	if errors.Is(err, domain.ErrEnrollmentNotFound) {
		return false, nil
	}
	return err == nil, err
}
