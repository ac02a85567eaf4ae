package postgres

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"campaign-escrow/internal/core/domain"
)

type profileRepo struct{ tx pgx.Tx }

func (r profileRepo) Insert(ctx context.Context, p domain.Profile) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO profiles (wallet, name, bio, avatar, role, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`, p.Wallet.Hex(), p.Name, p.Bio, p.Avatar, string(p.Role), p.CreatedAt)
	if uniqueViolation(err) {
		return domain.ErrAlreadyRegistered
	}
	return err
}

func (r profileRepo) Get(ctx context.Context, wallet common.Address) (domain.Profile, error) {
	var p domain.Profile
	err := r.tx.QueryRow(ctx, `SELECT name, bio, avatar, role, created_at FROM profiles WHERE wallet = $1`, wallet.Hex()).
		Scan(&p.Name, &p.Bio, &p.Avatar, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	p.Wallet = wallet
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r profileRepo) ListAddresses(ctx context.Context) ([]common.Address, error) {
	rows, err := r.tx.Query(ctx, `SELECT wallet FROM profiles ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (common.Address, error) {
		var s string
		err := row.Scan(&s)
		return hexAddr(s), err
	})
}
