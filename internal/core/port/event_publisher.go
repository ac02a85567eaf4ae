package port

import (
	"context"

	"campaign-escrow/internal/core/domain"
)

// EventPublisher forwards committed ledger events to external subscribers.
// It is called only after the transaction that produced the events has
// committed, so delivery is best-effort and never affects ledger state.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event)
}
