package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/infra/http/middleware"
	"github.com/xavierca1/medtour-leads/internal/infra/notify"
	"github.com/xavierca1/medtour-leads/internal/logger"
)

type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, n entity.StatusNotification) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier StatusNotifier
}

func NewWorker(ch *amqp.Channel, notifier StatusNotifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	logger.WithField("queue", queueName).Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks once the email is out. Malformed payloads and failed emails
// are dead-lettered; a calendar-only failure is logged and acked, since the
// email already went out without the link.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var n entity.StatusNotification
	if err := json.Unmarshal(d.Body, &n); err != nil {
		logger.WithError(err).Error("invalid notification payload")
		d.Nack(false, false)
		return
	}

	log := logger.WithFields(map[string]interface{}{
		"lead_id":    n.LeadID,
		"new_status": n.NewStatus,
	})

	err := w.Notifier.NotifyStatusChange(ctx, n)
	for _, ce := range entity.ChannelErrors(err, notify.ChannelMail) {
		middleware.RecordNotificationFailure(ce.Channel)
		log.WithError(ce.Err).WithField("channel", ce.Channel).Warn("notification channel failed")
	}

	if notify.MailFailed(err) {
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}
