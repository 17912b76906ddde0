package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/medtour-leads/internal/logger"
)

type BackfillEmailUseCase struct {
	LeadRepo LeadRepository
	Now      func() time.Time
}

func NewBackfillEmailUseCase(leadRepo LeadRepository) *BackfillEmailUseCase {
	return &BackfillEmailUseCase{LeadRepo: leadRepo, Now: time.Now}
}

// Execute stores an admin-supplied email. Repeating the same value is a
// no-op; a different value replaces the stored one, the admin being
// authoritative.
func (uc *BackfillEmailUseCase) Execute(ctx context.Context, input BackfillEmailInput) (*BackfillEmailOutput, error) {
	if input.LeadID == "" {
		return nil, invalid("lead id is required", ValidationError{Field: "id", Message: "is required"})
	}
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, translateRepoError("backfill_email.find", err)
	}

	if lead.HasEmail() && *lead.Email == input.Email {
		return &BackfillEmailOutput{Lead: lead, Changed: false}, nil
	}

	now := uc.Now().UTC()
	if err := uc.LeadRepo.UpdateEmail(ctx, lead.ID, input.Email, now); err != nil {
		return nil, translateRepoError("backfill_email.update", err)
	}

	log := logger.WithField("lead_id", lead.ID)
	if lead.HasEmail() {
		log.Info("lead email replaced by admin")
	} else {
		log.Info("lead email backfilled")
	}

	email := input.Email
	lead.Email = &email
	lead.Version++
	lead.UpdatedAt = now
	return &BackfillEmailOutput{Lead: lead, Changed: true}, nil
}
