package events

import (
	"context"
	"log/slog"
)

// LogSubscriber writes every event to a structured logger.
type LogSubscriber struct {
	logger *slog.Logger
}

// NewLogSubscriber returns a subscriber writing to logger.
func NewLogSubscriber(logger *slog.Logger) *LogSubscriber {
	return &LogSubscriber{logger: logger}
}

// Name identifies the subscriber in dispatcher logs.
func (s *LogSubscriber) Name() string { return "log" }

// Handle logs each event of d at info level, in the order given.
func (s *LogSubscriber) Handle(ctx context.Context, d Delivery) error {
	for _, ev := range d.Events {
		attrs := []slog.Attr{
			slog.String("delivery_id", d.ID.String()),
			slog.Int64("seq", ev.Seq),
			slog.String("type", string(ev.Type)),
			slog.String("actor", ev.Actor.Hex()),
		}
		if ev.CampaignID != nil {
			attrs = append(attrs, slog.Int64("campaign_id", *ev.CampaignID))
		}
		if ev.Amount != 0 {
			attrs = append(attrs, slog.Int64("amount", ev.Amount))
		}
		if ev.Success != nil {
			attrs = append(attrs, slog.Bool("success", *ev.Success))
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "ledger event", attrs...)
	}
	return nil
}
