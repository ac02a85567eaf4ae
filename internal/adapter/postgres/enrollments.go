package postgres

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"campaign-escrow/internal/core/domain"
)

const enrollmentColumns = `campaign_id, creator, submission_url, status, payout_percent, amount_paid, joined_at, updated_at`

type enrollmentRepo struct{ tx pgx.Tx }

func scanEnrollment(row pgx.Row) (domain.Enrollment, error) {
	var (
		e       domain.Enrollment
		creator string
		percent int16
	)
	err := row.Scan(&e.CampaignID, &creator, &e.SubmissionURL, &e.Status, &percent, &e.AmountPaid, &e.JoinedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Enrollment{}, domain.ErrEnrollmentNotFound
	}
	if err != nil {
		return domain.Enrollment{}, err
	}
	e.Creator = hexAddr(creator)
	e.PayoutPercent = uint8(percent)
	e.JoinedAt = e.JoinedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func (r enrollmentRepo) Insert(ctx context.Context, e domain.Enrollment) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO enrollments (`+enrollmentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.CampaignID, e.Creator.Hex(), e.SubmissionURL, string(e.Status), int16(e.PayoutPercent), e.AmountPaid, e.JoinedAt, e.UpdatedAt)
	if uniqueViolation(err) {
		return domain.ErrAlreadyEnrolled
	}
	return err
}

func (r enrollmentRepo) Get(ctx context.Context, campaignID int64, creator common.Address) (domain.Enrollment, error) {
	return scanEnrollment(r.tx.QueryRow(ctx, `SELECT `+enrollmentColumns+` FROM enrollments
WHERE campaign_id = $1 AND creator = $2`, campaignID, creator.Hex()))
}

func (r enrollmentRepo) Update(ctx context.Context, e domain.Enrollment) error {
	tag, err := r.tx.Exec(ctx, `UPDATE enrollments
SET submission_url = $3, status = $4, payout_percent = $5, amount_paid = $6, updated_at = $7
WHERE campaign_id = $1 AND creator = $2`,
		e.CampaignID, e.Creator.Hex(), e.SubmissionURL, string(e.Status), int16(e.PayoutPercent), e.AmountPaid, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEnrollmentNotFound
	}
	return nil
}

func (r enrollmentRepo) ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Enrollment, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE campaign_id = $1 ORDER BY seq`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Enrollment, error) {
		return scanEnrollment(row)
	})
}
