package service

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/mykafka"
)

// publish logs a failed send and never fails the caller.
func publish(ctx context.Context, p mykafka.Publisher, l *slog.Logger, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		l.Error("publish_event_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
