package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrStatusNotFound = errors.New("lead status not found")
	ErrStatusConflict = errors.New("lead status changed concurrently")
)

type Source string

const (
	SourcePrivate  Source = "private"
	SourceQuote    Source = "quote"
	SourceHospital Source = "hospital"
)

func (s Source) Valid() bool {
	switch s {
	case SourcePrivate, SourceQuote, SourceHospital:
		return true
	}
	return false
}

// Lead is the canonical pipeline record for one prospective patient.
type Lead struct {
	ID             string    `json:"id"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
	PatientName    string    `json:"patient_name"`
	Phone          string    `json:"phone"`
	PhoneKey       string    `json:"-"`
	Email          *string   `json:"email"`
	Country        string    `json:"country"`
	Specialty      string    `json:"specialty"`
	MedicalProblem string    `json:"medical_problem"`
	Source         Source    `json:"source"`
	StatusID       int       `json:"lead_status_id"`
	StatusName     string    `json:"status"`
	AssignedTo     *string   `json:"assigned_to,omitempty"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewLeadFromIntake builds the lead created by the first unification of an
// intake record. The lead starts in StatusNew.
func NewLeadFromIntake(rec IntakeRecord, phoneKey string, now time.Time) *Lead {
	base := rec.Base()
	lead := &Lead{
		ID:             uuid.New().String(),
		CorrelationID:  uuid.New().String(),
		PatientName:    base.PatientName,
		Phone:          base.Phone,
		PhoneKey:       phoneKey,
		Country:        base.Country,
		MedicalProblem: base.Message,
		Source:         rec.Source(),
		StatusID:       StatusNew,
		StatusName:     StatusNameNew,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if q, ok := rec.(*QuoteRequest); ok {
		lead.Specialty = q.Specialty
	}
	if email := rec.ContactEmail(); email != "" {
		lead.Email = &email
	}
	return lead
}

// HasEmail reports whether the lead carries a non-empty stored email.
func (l *Lead) HasEmail() bool {
	return l.Email != nil && *l.Email != ""
}

const (
	EmailFromLead   = "lead"
	EmailFromIntake = "intake"
)

// EnrichedLead is a lead merged with the intake record it was unified from.
// Email holds the resolved address; EmailSource tells where it came from.
type EnrichedLead struct {
	Lead
	EmailSource   string       `json:"email_source,omitempty"`
	SourceDetails IntakeRecord `json:"source_details"`
}

// LeadFilter narrows the admin lead listing. Zero values mean "no filter".
type LeadFilter struct {
	StatusID int
	Source   Source
	Since    time.Time
	Limit    int
	Offset   int
}
