package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

const ChannelQueue = "queue"

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NotificationProducer hands status notifications to the worker through
// RabbitMQ. Only a failed publish is reported back to the caller.
type NotificationProducer struct {
	Ch publisher
}

func NewProducer(ch *amqp.Channel) *NotificationProducer {
	return &NotificationProducer{Ch: ch}
}

func (p *NotificationProducer) NotifyStatusChange(ctx context.Context, n entity.StatusNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return &entity.ChannelError{Channel: ChannelQueue, Err: fmt.Errorf("encode notification: %w", err)}
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    n.LeadID + ":" + n.ChangedAt.UTC().Format("20060102T150405.000000000"),
		},
	)
	if err != nil {
		return &entity.ChannelError{Channel: ChannelQueue, Err: fmt.Errorf("publish to rabbitmq: %w", err)}
	}
	return nil
}
