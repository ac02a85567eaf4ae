package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"campaign-escrow/internal/core/domain"
)

var errNoSettings = errors.New("ledger settings not initialised")

type settingsRepo struct{ tx pgx.Tx }

// Authorities takes a share lock so a concurrent rotation waits for this
// transaction to finish.
func (r settingsRepo) Authorities(ctx context.Context) (domain.Authorities, error) {
	return r.authorities(ctx, "FOR SHARE")
}

func (r settingsRepo) LockAuthorities(ctx context.Context) (domain.Authorities, error) {
	return r.authorities(ctx, "FOR UPDATE")
}

func (r settingsRepo) authorities(ctx context.Context, lock string) (domain.Authorities, error) {
	var owner, verifier string
	err := r.tx.QueryRow(ctx, `SELECT owner_address, verifier_address FROM ledger_settings WHERE id `+lock).
		Scan(&owner, &verifier)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Authorities{}, errNoSettings
	}
	if err != nil {
		return domain.Authorities{}, err
	}
	return domain.Authorities{Owner: hexAddr(owner), Verifier: hexAddr(verifier)}, nil
}

func (r settingsRepo) SetAuthorities(ctx context.Context, a domain.Authorities) error {
	tag, err := r.tx.Exec(ctx, `UPDATE ledger_settings SET owner_address = $1, verifier_address = $2 WHERE id`,
		a.Owner.Hex(), a.Verifier.Hex())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNoSettings
	}
	return nil
}

func (r settingsRepo) NextCampaignID(ctx context.Context) (int64, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `SELECT next_campaign_id FROM ledger_settings WHERE id`).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errNoSettings
	}
	return next, err
}

// AllocateCampaignID increments the counter under the row lock the UPDATE
// takes, so ids are gap-free unless a transaction rolls back.
func (r settingsRepo) AllocateCampaignID(ctx context.Context) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `UPDATE ledger_settings SET next_campaign_id = next_campaign_id + 1
WHERE id RETURNING next_campaign_id - 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errNoSettings
	}
	return id, err
}
