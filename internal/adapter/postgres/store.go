// Package postgres implements port.Store on PostgreSQL via pgxpool.
package postgres

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// Store runs every ledger transaction as a pgx transaction. Rows that guard
// money movement are locked with SELECT ... FOR UPDATE, so READ COMMITTED is
// enough to keep concurrent writers serialized per campaign and per account.
type Store struct {
	pool *pgxpool.Pool
}

var _ port.Store = (*Store)(nil)

// NewStore returns a store using pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Init creates the settings row on first start. Existing authorities are
// kept: rotations made through the API survive restarts.
func (s *Store) Init(ctx context.Context, a domain.Authorities) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO ledger_settings (id, owner_address, verifier_address, next_campaign_id)
VALUES (TRUE, $1, $2, 0) ON CONFLICT (id) DO NOTHING`, a.Owner.Hex(), a.Verifier.Hex())
	return err
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
// Panics are rethrown after the rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(ctx, &repos{tx: tx})
	return err
}

// View runs fn in a READ COMMITTED transaction that is always rolled back.
// Row locks taken by fn are released when it returns.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	return fn(ctx, &repos{tx: tx})
}

type repos struct {
	tx pgx.Tx
}

func (r *repos) Campaigns() port.CampaignRepository     { return campaignRepo{r.tx} }
func (r *repos) Enrollments() port.EnrollmentRepository { return enrollmentRepo{r.tx} }
func (r *repos) Profiles() port.ProfileRepository       { return profileRepo{r.tx} }
func (r *repos) Settings() port.SettingsRepository      { return settingsRepo{r.tx} }
func (r *repos) Tokens() port.TokenLedger               { return tokenLedger{r.tx} }
func (r *repos) Events() port.EventLog                  { return eventLog{r.tx} }

// uniqueViolation reports a duplicate primary key.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func hexAddr(s string) common.Address { return common.HexToAddress(s) }
