package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/logger"
)

const (
	defaultActor  = "admin"
	notifyTimeout = 5 * time.Second
)

type ChangeStatusUseCase struct {
	StatusRepo StatusRepository
	Resolver   LeadResolver
	Notifier   Notifier
	Now        func() time.Time
}

func NewChangeStatusUseCase(statusRepo StatusRepository, resolver LeadResolver, notifier Notifier) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{
		StatusRepo: statusRepo,
		Resolver:   resolver,
		Notifier:   notifier,
		Now:        time.Now,
	}
}

// Execute moves a lead to any status (there is no transition table) and
// records the audit event atomically. Notification happens after commit
// and can only add warnings.
func (uc *ChangeStatusUseCase) Execute(ctx context.Context, input ChangeStatusInput) (*ChangeStatusOutput, error) {
	if input.LeadID == "" {
		return nil, invalid("lead id is required", ValidationError{Field: "id", Message: "is required"})
	}
	if input.StatusID <= 0 {
		return nil, invalid("validation failed: lead_status_id (is required)",
			ValidationError{Field: "lead_status_id", Message: "is required"})
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		actor = defaultActor
	}

	change := entity.StatusChange{
		LeadID:           input.LeadID,
		NewStatusID:      input.StatusID,
		ExpectedStatusID: input.ExpectedStatusID,
		AssignedTo:       trimmedOrNil(input.AssignedTo),
		Note:             trimmedOrNil(input.Note),
		Actor:            actor,
		At:               uc.Now().UTC(),
	}

	event, err := uc.StatusRepo.ApplyChange(ctx, change)
	if err != nil {
		return nil, translateRepoError("change_status.apply", err)
	}

	log := logger.WithFields(map[string]interface{}{
		"lead_id":    input.LeadID,
		"event_id":   event.ID,
		"new_status": event.NewStatus,
		"actor":      actor,
	})
	log.Info("lead status changed")

	out := &ChangeStatusOutput{Event: event, Warnings: []Warning{}}

	// The change is committed from here on; nothing below may turn it into
	// a failure.
	lead, err := uc.Resolver.Execute(ctx, input.LeadID)
	if err != nil {
		log.WithError(err).Error("reload after status change failed")
		out.Warnings = append(out.Warnings, Warning{
			Code:    CodeStorage,
			Channel: "reload",
			Message: "status saved but the lead could not be reloaded",
		})
		return out, nil
	}
	out.Lead = lead

	for _, sideErr := range uc.notify(ctx, lead, event) {
		log.WithError(sideErr.Err).WithField("channel", sideErr.Channel).Warn("status notification failed")
		out.Warnings = append(out.Warnings, warningFrom(sideErr))
	}

	return out, nil
}

func (uc *ChangeStatusUseCase) notify(ctx context.Context, lead *entity.EnrichedLead, event *entity.StatusChangeEvent) []*SideEffectError {
	if uc.Notifier == nil || lead.Email == nil {
		return nil
	}
	// A note on the current status is internal; the patient hears nothing.
	if event.OldStatusID != nil && *event.OldStatusID == event.NewStatusID {
		return nil
	}

	n := entity.StatusNotification{
		LeadID:      lead.ID,
		PatientName: lead.PatientName,
		Email:       *lead.Email,
		Phone:       lead.Phone,
		Country:     lead.Country,
		Specialty:   lead.Specialty,
		Source:      lead.Source,
		NewStatus:   event.NewStatus,
		Actor:       event.Actor,
		ChangedAt:   event.CreatedAt,
	}
	if event.OldStatus != nil {
		n.OldStatus = *event.OldStatus
	}
	if event.Note != nil {
		n.Note = *event.Note
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	return entity.ChannelErrors(uc.Notifier.NotifyStatusChange(ctx, n), "notification")
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
