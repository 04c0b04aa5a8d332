package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/technotes/apiserver/types"
)

const attrEventType = "event_type"

// EventPublisher encodes change events as JSON onto one channel.
type EventPublisher struct {
	mq      *MQ
	channel string
}

func NewEventPublisher(m *MQ, channel string) *EventPublisher {
	return &EventPublisher{mq: m, channel: channel}
}

func (p *EventPublisher) Publish(ctx context.Context, event types.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := p.mq.Publish(ctx, p.channel, data, map[string]string{attrEventType: event.Type}); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// DecodeEvent parses a message produced by EventPublisher.
func DecodeEvent(msg Message) (types.Event, error) {
	var event types.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	if event.Type == "" {
		event.Type = msg.Attributes[attrEventType]
	}
	return event, nil
}

// TailEvents subscribes to channel and calls fn for every event until ctx is
// done. Undecodable messages are dropped rather than redelivered.
func TailEvents(ctx context.Context, m *MQ, channel string, fn func(context.Context, types.Event) error) error {
	return m.Subscribe(ctx, channel, func(ctx context.Context, msg Message) error {
		event, err := DecodeEvent(msg)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDrop, err)
		}
		return fn(ctx, event)
	})
}
