package services

import (
	"context"
	"time"

	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/types"
)

// EventPublisher announces completed writes. A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, event types.Event) error
}

type notifier struct {
	events EventPublisher
	logger logging.Logger
}

func newNotifier(events EventPublisher, logger logging.Logger) notifier {
	if logger == nil {
		logger = logging.Nop()
	}
	return notifier{events: events, logger: logger}
}

// notify never fails the caller; the write it reports has already happened.
func (n notifier) notify(ctx context.Context, eventType, entityID, name string) {
	if n.events == nil {
		return
	}
	event := types.Event{
		Type:       eventType,
		EntityID:   entityID,
		Name:       name,
		OccurredAt: time.Now().UTC(),
	}
	if err := n.events.Publish(ctx, event); err != nil {
		n.logger.Warn(ctx, "publish event failed", "type", eventType, "entity_id", entityID, "error", err)
	}
}
