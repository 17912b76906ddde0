package usecase

import (
	"context"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/logger"
)

type ResolveLeadUseCase struct {
	LeadRepo   LeadRepository
	IntakeRepo IntakeRepository
}

func NewResolveLeadUseCase(leadRepo LeadRepository, intakeRepo IntakeRepository) *ResolveLeadUseCase {
	return &ResolveLeadUseCase{
		LeadRepo:   leadRepo,
		IntakeRepo: intakeRepo,
	}
}

// Execute merges a lead with the intake record of its source. It is
// read-only: a resolved intake email is shown, never written back.
func (uc *ResolveLeadUseCase) Execute(ctx context.Context, leadID string) (*entity.EnrichedLead, error) {
	if leadID == "" {
		return nil, invalid("lead id is required", ValidationError{Field: "id", Message: "is required"})
	}

	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, translateRepoError("resolve_lead.find", err)
	}

	rec, err := uc.IntakeRepo.FindForLead(ctx, lead)
	if err != nil {
		return nil, translateRepoError("resolve_lead.intake", err)
	}
	if rec == nil {
		logger.WithFields(map[string]interface{}{
			"lead_id": lead.ID,
			"source":  lead.Source,
		}).Warn("no intake record matched lead")
	}

	enriched := &entity.EnrichedLead{Lead: *lead, SourceDetails: rec}
	enriched.Email, enriched.EmailSource = ResolveEmail(lead, rec)
	return enriched, nil
}

// ResolveEmail applies the fallback chain: the lead's own email, then the
// intake record's email when its variant carries one, then nil.
func ResolveEmail(lead *entity.Lead, rec entity.IntakeRecord) (*string, string) {
	if lead.HasEmail() {
		email := *lead.Email
		return &email, entity.EmailFromLead
	}
	if rec != nil {
		if email := rec.ContactEmail(); email != "" {
			return &email, entity.EmailFromIntake
		}
	}
	return nil, ""
}
