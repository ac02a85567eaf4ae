package postgres

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"campaign-escrow/internal/core/domain"
)

type tokenLedger struct{ tx pgx.Tx }

func (l tokenLedger) BalanceOf(ctx context.Context, holder common.Address) (int64, error) {
	var bal int64
	err := l.tx.QueryRow(ctx, `SELECT balance FROM token_balances WHERE holder = $1`, holder.Hex()).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return bal, err
}

func (l tokenLedger) Allowance(ctx context.Context, owner, spender common.Address) (int64, error) {
	return l.allowance(ctx, owner, spender, false)
}

func (l tokenLedger) allowance(ctx context.Context, owner, spender common.Address, lock bool) (int64, error) {
	q := `SELECT amount FROM token_allowances WHERE owner_address = $1 AND spender_address = $2`
	if lock {
		q += ` FOR UPDATE`
	}
	var amount int64
	err := l.tx.QueryRow(ctx, q, owner.Hex(), spender.Hex()).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return amount, err
}

func (l tokenLedger) Approve(ctx context.Context, owner, spender common.Address, amount int64) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return domain.ErrInvalidAddress
	}
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	_, err := l.tx.Exec(ctx, `INSERT INTO token_allowances (owner_address, spender_address, amount) VALUES ($1,$2,$3)
ON CONFLICT (owner_address, spender_address) DO UPDATE SET amount = EXCLUDED.amount`, owner.Hex(), spender.Hex(), amount)
	return err
}

func (l tokenLedger) Transfer(ctx context.Context, from, to common.Address, amount int64) error {
	return l.move(ctx, from, to, amount)
}

func (l tokenLedger) TransferFrom(ctx context.Context, spender, from, to common.Address, amount int64) error {
	have, err := l.allowance(ctx, from, spender, true)
	if err != nil {
		return err
	}
	left, err := domain.Debit(domain.ErrInsufficientAllowance, spender, have, amount)
	if err != nil {
		return err
	}
	if err = l.move(ctx, from, to, amount); err != nil {
		return err
	}
	_, err = l.tx.Exec(ctx, `UPDATE token_allowances SET amount = $3 WHERE owner_address = $1 AND spender_address = $2`,
		from.Hex(), spender.Hex(), left)
	return err
}

func (l tokenLedger) Mint(ctx context.Context, to common.Address, amount int64) error {
	if to == (common.Address{}) {
		return domain.ErrInvalidAddress
	}
	bals, err := l.lockBalances(ctx, to)
	if err != nil {
		return err
	}
	next, err := domain.Credit(bals[to], amount)
	if err != nil {
		return err
	}
	return l.setBalance(ctx, to, next)
}

func (l tokenLedger) move(ctx context.Context, from, to common.Address, amount int64) error {
	if to == (common.Address{}) {
		return domain.ErrInvalidAddress
	}
	bals, err := l.lockBalances(ctx, from, to)
	if err != nil {
		return err
	}
	fromLeft, err := domain.Debit(domain.ErrInsufficientBalance, from, bals[from], amount)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	toNext, err := domain.Credit(bals[to], amount)
	if err != nil {
		return err
	}
	if err = l.setBalance(ctx, from, fromLeft); err != nil {
		return err
	}
	return l.setBalance(ctx, to, toNext)
}

// lockBalances locks the existing balance rows of holders in a fixed order,
// so two transfers between the same accounts cannot deadlock. Missing rows
// read as zero.
func (l tokenLedger) lockBalances(ctx context.Context, holders ...common.Address) (map[common.Address]int64, error) {
	keys := make([]string, len(holders))
	for i, h := range holders {
		keys[i] = h.Hex()
	}
	rows, err := l.tx.Query(ctx, `SELECT holder, balance FROM token_balances
WHERE holder = ANY($1) ORDER BY holder FOR UPDATE`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[common.Address]int64, len(holders))
	for rows.Next() {
		var (
			holder string
			bal    int64
		)
		if err = rows.Scan(&holder, &bal); err != nil {
			return nil, err
		}
		out[hexAddr(holder)] = bal
	}
	return out, rows.Err()
}

func (l tokenLedger) setBalance(ctx context.Context, holder common.Address, bal int64) error {
	_, err := l.tx.Exec(ctx, `INSERT INTO token_balances (holder, balance) VALUES ($1,$2)
ON CONFLICT (holder) DO UPDATE SET balance = EXCLUDED.balance`, holder.Hex(), bal)
	return err
}
