package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// maxEventPage caps EventFilter.Limit.
const maxEventPage = 500

type eventLog struct{ tx pgx.Tx }

func (l eventLog) Append(ctx context.Context, ev domain.Event) (domain.Event, error) {
	err := l.tx.QueryRow(ctx, `INSERT INTO ledger_events
(type, campaign_id, actor, subject, amount, success, detail, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING seq`,
		string(ev.Type), ev.CampaignID, ev.Actor.Hex(), ev.Subject.Hex(), ev.Amount, ev.Success, ev.Detail, ev.CreatedAt).
		Scan(&ev.Seq)
	return ev, err
}

func (l eventLog) List(ctx context.Context, f port.EventFilter) ([]domain.Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxEventPage {
		limit = maxEventPage
	}
	var (
		where = []string{"seq > $1"}
		args  = []any{f.AfterSeq}
	)
	if f.CampaignID != nil {
		args = append(args, *f.CampaignID)
		where = append(where, "campaign_id = $"+strconv.Itoa(len(args)))
	}
	args = append(args, limit)
	q := `SELECT seq, type, campaign_id, actor, subject, amount, success, detail, created_at FROM ledger_events
WHERE ` + strings.Join(where, " AND ") + ` ORDER BY seq LIMIT $` + strconv.Itoa(len(args))

	rows, err := l.tx.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		var (
			ev             domain.Event
			actor, subject string
		)
		err := row.Scan(&ev.Seq, &ev.Type, &ev.CampaignID, &actor, &subject, &ev.Amount, &ev.Success, &ev.Detail, &ev.CreatedAt)
		ev.Actor = hexAddr(actor)
		ev.Subject = hexAddr(subject)
		ev.CreatedAt = ev.CreatedAt.UTC()
		return ev, err
	})
}
