package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campaign-escrow/internal/core/port"
)

// ErrCustodyMismatch means the custody balance differs from what open
// campaigns still hold. Money left custody outside the ledger, or a
// write was lost.
var ErrCustodyMismatch = errors.New("custody balance does not match campaign totals")

// StatsReader is the slice of port.LedgerUseCase the reconciler needs.
type StatsReader interface {
	GetStats(ctx context.Context) (*port.StatsResp, error)
}

// CustodyReconciler checks that custody == deposited - paid - refunded.
type CustodyReconciler struct {
	stats  StatsReader
	logger *slog.Logger
}

// NewCustodyReconciler returns a reconciler reading totals from stats.
func NewCustodyReconciler(stats StatsReader, logger *slog.Logger) *CustodyReconciler {
	return &CustodyReconciler{stats: stats, logger: logger}
}

// Name identifies the job in scheduler logs.
func (r *CustodyReconciler) Name() string { return "custody_reconciler" }

// Run compares custody with outstanding campaign funds once. A mismatch is
// logged and returned as ErrCustodyMismatch.
func (r *CustodyReconciler) Run(ctx context.Context) error {
	s, err := r.stats.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	if s.Custody != s.Outstanding {
		r.logger.Error("custody mismatch",
			slog.Int64("custody", s.Custody),
			slog.Int64("outstanding", s.Outstanding),
			slog.Int64("deposited", s.Deposited),
			slog.Int64("paid", s.Paid),
			slog.Int64("refunded", s.Refunded))
		return fmt.Errorf("%w: custody %d, outstanding %d", ErrCustodyMismatch, s.Custody, s.Outstanding)
	}
	r.logger.Debug("custody reconciled", slog.Int64("campaigns", s.Campaigns), slog.Int64("custody", s.Custody))
	return nil
}
