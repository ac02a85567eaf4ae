// Package events fans committed ledger events out to subscribers on a
// bounded goroutine pool.
package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// Delivery is one committed batch handed to a subscriber. All subscribers
// see the same ID for the same batch.
type Delivery struct {
	ID     uuid.UUID
	Events []domain.Event
}

// Subscriber consumes deliveries. Handle runs on a pool worker and must not
// block indefinitely.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, d Delivery) error
}

// Dispatcher implements port.EventPublisher. Publish never blocks the
// ledger transaction that produced the events: it runs after commit and
// hands work to the pool.
//
// Each subscriber receives deliveries one at a time, in the order Publish
// was called. Concurrent commits may reach Publish in either order, so
// consumers that need commit order should sort on Event.Seq.
type Dispatcher struct {
	pool   *ants.Pool
	boxes  []*mailbox
	logger *slog.Logger
	wg     sync.WaitGroup
}

var _ port.EventPublisher = (*Dispatcher)(nil)

type queued struct {
	ctx      context.Context
	delivery Delivery
}

// mailbox holds the pending deliveries of one subscriber. At most one pool
// task drains it at a time.
type mailbox struct {
	sub     Subscriber
	mu      sync.Mutex
	queue   []queued
	running bool
}

// NewDispatcher creates a dispatcher with the given number of workers.
func NewDispatcher(workers int, logger *slog.Logger, subs ...Subscriber) (*Dispatcher, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	boxes := make([]*mailbox, len(subs))
	for i, sub := range subs {
		boxes[i] = &mailbox{sub: sub}
	}
	return &Dispatcher{pool: pool, boxes: boxes, logger: logger}, nil
}

// Publish schedules delivery of events to every subscriber. The request
// context may end before delivery, so only its values are kept.
func (d *Dispatcher) Publish(ctx context.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	delivery := Delivery{ID: uuid.New(), Events: slices.Clone(events)}

	for _, box := range d.boxes {
		box.mu.Lock()
		box.queue = append(box.queue, queued{ctx: ctx, delivery: delivery})
		if box.running {
			box.mu.Unlock()
			continue
		}
		box.running = true
		box.mu.Unlock()

		d.wg.Add(1)
		if err := d.pool.Submit(func() { d.drain(box) }); err != nil {
			d.wg.Done()
			box.mu.Lock()
			dropped := box.queue
			box.queue = nil
			box.running = false
			box.mu.Unlock()
			for _, q := range dropped {
				d.logger.Error("event delivery dropped",
					slog.String("subscriber", box.sub.Name()),
					slog.String("delivery_id", q.delivery.ID.String()),
					slog.Any("error", err))
			}
		}
	}
}

func (d *Dispatcher) drain(box *mailbox) {
	defer d.wg.Done()
	for {
		box.mu.Lock()
		if len(box.queue) == 0 {
			box.running = false
			box.mu.Unlock()
			return
		}
		next := box.queue[0]
		box.queue[0] = queued{}
		box.queue = box.queue[1:]
		box.mu.Unlock()

		if err := box.sub.Handle(next.ctx, next.delivery); err != nil {
			d.logger.Error("event delivery failed",
				slog.String("subscriber", box.sub.Name()),
				slog.String("delivery_id", next.delivery.ID.String()),
				slog.Any("error", err))
		}
	}
}

// Close waits for in-flight deliveries and releases the pool. Publish after
// Close drops events with a logged error.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.pool.Release()
}
