package usecase

import (
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

type CaptureIntakeOutput struct {
	LeadID      string `json:"lead_id"`
	IntakeID    string `json:"intake_id"`
	LeadCreated bool   `json:"lead_created"`
}

type ChangeStatusInput struct {
	LeadID           string  `json:"-"`
	StatusID         int     `json:"lead_status_id"`
	Note             *string `json:"note,omitempty"`
	ExpectedStatusID *int    `json:"expected_status_id,omitempty"`
	AssignedTo       *string `json:"assigned_to,omitempty"`
	Actor            string  `json:"-"`
}

type ChangeStatusOutput struct {
	Lead     *entity.EnrichedLead      `json:"lead"`
	Event    *entity.StatusChangeEvent `json:"event"`
	Warnings []Warning                 `json:"warnings"`
}

type BackfillEmailInput struct {
	LeadID string `json:"-"`
	Email  string `json:"email" validate:"required,email,max=254"`
}

type BackfillEmailOutput struct {
	Lead    *entity.Lead `json:"lead"`
	Changed bool         `json:"changed"`
}

type ListLeadsInput struct {
	StatusID int
	Source   string
	Since    time.Time
	Limit    int
	Offset   int
}
