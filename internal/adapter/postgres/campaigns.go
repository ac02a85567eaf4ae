package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

const campaignColumns = `id, brand_address, details, reward_per_creator, max_creators, total_deposited,
total_paid, total_refunded, enrolled_count, is_active, closed, created_at, deadline`

type campaignRepo struct{ tx pgx.Tx }

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		c        domain.Campaign
		brand    string
		deadline *time.Time
	)
	err := row.Scan(&c.ID, &brand, &c.Details, &c.RewardPerCreator, &c.MaxCreators, &c.TotalDeposited,
		&c.TotalPaid, &c.TotalRefunded, &c.EnrolledCount, &c.IsActive, &c.Closed, &c.CreatedAt, &deadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	c.Brand = hexAddr(brand)
	c.CreatedAt = c.CreatedAt.UTC()
	if deadline != nil {
		c.Deadline = deadline.UTC()
	}
	return c, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r campaignRepo) Insert(ctx context.Context, c domain.Campaign) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ID, c.Brand.Hex(), c.Details, c.RewardPerCreator, c.MaxCreators, c.TotalDeposited,
		c.TotalPaid, c.TotalRefunded, c.EnrolledCount, c.IsActive, c.Closed, c.CreatedAt, nullableTime(c.Deadline))
	return err
}

func (r campaignRepo) Get(ctx context.Context, id int64) (domain.Campaign, error) {
	return scanCampaign(r.tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
}

func (r campaignRepo) GetForUpdate(ctx context.Context, id int64) (domain.Campaign, error) {
	return scanCampaign(r.tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id))
}

func (r campaignRepo) Update(ctx context.Context, c domain.Campaign) error {
	tag, err := r.tx.Exec(ctx, `UPDATE campaigns
SET total_paid = $2, total_refunded = $3, enrolled_count = $4, is_active = $5, closed = $6
WHERE id = $1`, c.ID, c.TotalPaid, c.TotalRefunded, c.EnrolledCount, c.IsActive, c.Closed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

func (r campaignRepo) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
}

func (r campaignRepo) Totals(ctx context.Context) (port.CampaignTotals, error) {
	var t port.CampaignTotals
	err := r.tx.QueryRow(ctx, `SELECT count(*), COALESCE(sum(total_deposited),0), COALESCE(sum(total_paid),0),
COALESCE(sum(total_refunded),0) FROM campaigns`).Scan(&t.Campaigns, &t.Deposited, &t.Paid, &t.Refunded)
	return t, err
}
