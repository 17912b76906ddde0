package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var statusTemplate = template.Must(template.ParseFS(templateFS, "templates/status_update.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	dialer dialer
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		From:   from,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// Send delivers one HTML message over SMTP.
func (s *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp email: %w", err)
	}
	return nil
}

// SendStatusUpdate tells the patient their lead moved to a new status.
// bookingURL is optional.
func (s *EmailSender) SendStatusUpdate(n entity.StatusNotification, bookingURL string) error {
	subject, body, err := RenderStatusUpdate(n, bookingURL)
	if err != nil {
		return err
	}
	return s.Send(n.Email, subject, body)
}

func RenderStatusUpdate(n entity.StatusNotification, bookingURL string) (string, string, error) {
	data := StatusEmailData{
		Name:       n.PatientName,
		Specialty:  n.Specialty,
		OldStatus:  n.OldStatus,
		NewStatus:  n.NewStatus,
		Note:       n.Note,
		BookingURL: bookingURL,
	}

	var body bytes.Buffer
	if err := statusTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render status email: %w", err)
	}

	subject := fmt.Sprintf("Update on your enquiry: %s", n.NewStatus)
	return subject, body.String(), nil
}
