package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/technotes/apiserver/config"
)

// amqpChannel is the subset of *amqp.Channel the client uses.
type amqpChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	IsClosed() bool
	Close() error
}

// RabbitMQClient publishes to and consumes from named queues on the default
// exchange. A channel closed by a broker exception is reopened on next use,
// and each queue is declared once per channel.
type RabbitMQClient struct {
	conn            *amqp.Connection
	openChannel     func() (amqpChannel, error)
	prefetchCount   int
	queueDurable    bool
	queueAutoDelete bool

	mu       sync.Mutex
	channel  amqpChannel
	declared map[string]struct{}
}

func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := newRabbitMQClient(cfg, func() (amqpChannel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	})
	client.conn = conn

	client.mu.Lock()
	_, err = client.currentChannel()
	client.mu.Unlock()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return client, nil
}

func newRabbitMQClient(cfg config.RabbitMQConfig, openChannel func() (amqpChannel, error)) *RabbitMQClient {
	return &RabbitMQClient{
		openChannel:     openChannel,
		prefetchCount:   cfg.PrefetchCount,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
	}
}

// Publish sends a persistent JSON message to the named queue.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}
	ch, err := r.channelFor(channel)
	if err != nil {
		return "", err
	}

	headers := amqp.Table{}
	for key, value := range attrs {
		headers[key] = value
	}

	deliveryMode := amqp.Transient
	if r.queueDurable {
		deliveryMode = amqp.Persistent
	}

	messageID := uuid.NewString()
	err = ch.PublishWithContext(ctx, "", channel, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: deliveryMode,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Type:         attrs[attrEventType],
		Headers:      headers,
		Body:         data,
	})
	if err != nil {
		return "", err
	}
	return messageID, nil
}

func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}
	ch, err := r.channelFor(channel)
	if err != nil {
		return err
	}

	consumerTag := "technotes-" + uuid.NewString()
	deliveries, err := ch.Consume(channel, consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = ch.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			err := handler(ctx, Message{
				ID:         delivery.MessageId,
				Data:       delivery.Body,
				Attributes: headersToAttributes(delivery.Headers),
			})
			switch {
			case err == nil:
				_ = delivery.Ack(false)
			case errors.Is(err, ErrDrop):
				_ = delivery.Nack(false, false)
			default:
				_ = delivery.Nack(false, true)
			}
		}
	}
}

func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	if r.channel != nil {
		_ = r.channel.Close()
		r.channel = nil
	}
	r.mu.Unlock()
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// channelFor returns an open channel on which the named queue has been
// declared.
func (r *RabbitMQClient) channelFor(queue string) (amqpChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.currentChannel()
	if err != nil {
		return nil, err
	}
	if _, ok := r.declared[queue]; ok {
		return ch, nil
	}
	if _, err := ch.QueueDeclare(queue, r.queueDurable, r.queueAutoDelete, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	r.declared[queue] = struct{}{}
	return ch, nil
}

// currentChannel reopens the channel if the broker closed it. Callers hold mu.
func (r *RabbitMQClient) currentChannel() (amqpChannel, error) {
	if r.channel != nil && !r.channel.IsClosed() {
		return r.channel, nil
	}

	ch, err := r.openChannel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if r.prefetchCount > 0 {
		if err := ch.Qos(r.prefetchCount, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("set rabbitmq qos: %w", err)
		}
	}
	r.channel = ch
	r.declared = make(map[string]struct{})
	return ch, nil
}

func headersToAttributes(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		switch typed := value.(type) {
		case string:
			attrs[key] = typed
		case []byte:
			attrs[key] = string(typed)
		default:
			attrs[key] = fmt.Sprint(value)
		}
	}
	return attrs
}
