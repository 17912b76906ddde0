package notify

import (
	"context"
	"errors"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/infra/integration/calendar"
	"github.com/xavierca1/medtour-leads/internal/logger"
)

const (
	ChannelMail     = "mail"
	ChannelCalendar = "calendar"
)

type EmailSender interface {
	SendStatusUpdate(n entity.StatusNotification, bookingURL string) error
}

type BookingLinker interface {
	CreateBookingLink(ctx context.Context, input calendar.BookingLinkInput) (string, error)
}

// Dispatcher performs the status-change side effects inline. A calendar
// failure does not stop the email; it goes out without a booking link.
type Dispatcher struct {
	Mail     EmailSender
	Calendar BookingLinker
}

func NewDispatcher(mail EmailSender, cal BookingLinker) *Dispatcher {
	return &Dispatcher{Mail: mail, Calendar: cal}
}

// NotifyStatusChange returns nil or an errors.Join of *entity.ChannelError,
// one per failed channel.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, n entity.StatusNotification) error {
	var errs []error
	log := logger.WithFields(map[string]interface{}{
		"lead_id":    n.LeadID,
		"new_status": n.NewStatus,
	})

	bookingURL := ""
	if d.Calendar != nil && n.WantsBookingLink() {
		url, err := d.Calendar.CreateBookingLink(ctx, calendar.BookingLinkInput{
			Name:      n.PatientName,
			Email:     n.Email,
			Phone:     n.Phone,
			Topic:     n.Specialty,
			Reference: n.LeadID,
		})
		if err != nil {
			errs = append(errs, &entity.ChannelError{Channel: ChannelCalendar, Err: err})
		} else {
			bookingURL = url
		}
	}

	if d.Mail != nil {
		if err := d.Mail.SendStatusUpdate(n, bookingURL); err != nil {
			errs = append(errs, &entity.ChannelError{Channel: ChannelMail, Err: err})
		} else {
			log.WithField("booking_link", bookingURL != "").Info("status email sent")
		}
	}

	return errors.Join(errs...)
}

// MailFailed reports whether err includes a failed email.
func MailFailed(err error) bool {
	for _, ce := range entity.ChannelErrors(err, ChannelMail) {
		if ce.Channel == ChannelMail {
			return true
		}
	}
	return false
}
