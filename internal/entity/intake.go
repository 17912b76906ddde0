package entity

import (
	"encoding/json"
	"time"
)

// IntakeRecord is a raw public-form submission. Each source form writes its
// own table; the variants share IntakeBase.
type IntakeRecord interface {
	Source() Source
	Base() *IntakeBase
	// ContactEmail returns the email captured by the form, or "" when the
	// variant has none.
	ContactEmail() string
}

type IntakeBase struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	PatientName   string    `json:"patient_name" validate:"required,min=2,max=200"`
	Phone         string    `json:"phone" validate:"required,min=6,max=32"`
	Country       string    `json:"country" validate:"max=80"`
	Message       string    `json:"message" validate:"max=5000"`
	CreatedAt     time.Time `json:"created_at"`
}

func (b *IntakeBase) Base() *IntakeBase { return b }

type QuoteRequest struct {
	IntakeBase
	Age       int    `json:"age" validate:"gte=0,lte=130"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female other"`
	City      string `json:"city" validate:"max=120"`
	Specialty string `json:"specialty" validate:"max=120"`
}

func (q *QuoteRequest) Source() Source       { return SourceQuote }
func (q *QuoteRequest) ContactEmail() string { return "" }

func (q QuoteRequest) MarshalJSON() ([]byte, error) {
	type alias QuoteRequest
	return json.Marshal(struct {
		Type Source `json:"type"`
		alias
	}{SourceQuote, alias(q)})
}

type PrivateConsultation struct {
	IntakeBase
	Email         string `json:"email" validate:"required,email,max=254"`
	ScheduledDate string `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
	Topic         string `json:"topic" validate:"max=200"`
	ReportURL     string `json:"report_url,omitempty" validate:"omitempty,url"`
}

func (p *PrivateConsultation) Source() Source       { return SourcePrivate }
func (p *PrivateConsultation) ContactEmail() string { return p.Email }

func (p PrivateConsultation) MarshalJSON() ([]byte, error) {
	type alias PrivateConsultation
	return json.Marshal(struct {
		Type Source `json:"type"`
		alias
	}{SourcePrivate, alias(p)})
}

type HospitalInquiry struct {
	IntakeBase
	HospitalID string `json:"hospital_id" validate:"required,max=64"`
}

func (h *HospitalInquiry) Source() Source       { return SourceHospital }
func (h *HospitalInquiry) ContactEmail() string { return "" }

func (h HospitalInquiry) MarshalJSON() ([]byte, error) {
	type alias HospitalInquiry
	return json.Marshal(struct {
		Type Source `json:"type"`
		alias
	}{SourceHospital, alias(h)})
}
