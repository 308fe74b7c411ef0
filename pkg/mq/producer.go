package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

const (
	CascadeEventExchange = "cascade_events"
	RepairEventExchange  = "repair_events"
	CascadeEventQueue    = "cascade_event_queue"
	RepairEventQueue     = "repair_event_queue"
)

type Producer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

var defaultProducer *Producer

// InitProducer connects to RabbitMQ and installs the default producer.
// The producer is optional: a nil producer means cleanup events are only
// logged, never queued for the reconciler.
func InitProducer(rabbitmqURL string) error {
	p, err := NewProducer(rabbitmqURL)
	if err != nil {
		return err
	}
	defaultProducer = p
	return nil
}

func DefaultProducer() *Producer {
	return defaultProducer
}

func NewProducer(rabbitmqURL string) (*Producer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	producer := &Producer{conn: conn, channel: ch}
	if err := producer.setupTopology(); err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}
	return producer, nil
}

func (p *Producer) setupTopology() error {
	bindings := []struct {
		exchange string
		queue    string
	}{
		{CascadeEventExchange, CascadeEventQueue},
		{RepairEventExchange, RepairEventQueue},
	}

	for _, b := range bindings {
		err := p.channel.ExchangeDeclare(
			b.exchange,
			"direct",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", b.exchange, err)
		}

		_, err = p.channel.QueueDeclare(
			b.queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}

		if err := p.channel.QueueBind(b.queue, "", b.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

// PublishCascadeEvent queues a cascade record. Best effort: failures are
// logged by the caller and never surfaced to the request.
func (p *Producer) PublishCascadeEvent(ctx context.Context, event *CascadeEvent) error {
	return p.publish(ctx, CascadeEventExchange, event)
}

func (p *Producer) PublishRepairEvent(ctx context.Context, event *RepairEvent) error {
	return p.publish(ctx, RepairEventExchange, event)
}

func (p *Producer) publish(ctx context.Context, exchange string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		exchange,
		"",    // routing key
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", exchange, err)
	}
	hlog.CtxInfof(ctx, "published event to %s", exchange)
	return nil
}

func (p *Producer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
