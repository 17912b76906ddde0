package usecase

import (
	"context"
	"strings"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

const maxListLimit = 200

// QueryLeadsUseCase serves the read-only admin views. Every call takes its
// filters explicitly; nothing is held between requests.
type QueryLeadsUseCase struct {
	LeadRepo   LeadRepository
	StatusRepo StatusRepository
}

func NewQueryLeadsUseCase(leadRepo LeadRepository, statusRepo StatusRepository) *QueryLeadsUseCase {
	return &QueryLeadsUseCase{LeadRepo: leadRepo, StatusRepo: statusRepo}
}

func (uc *QueryLeadsUseCase) List(ctx context.Context, input ListLeadsInput) ([]*entity.Lead, error) {
	source := entity.Source(strings.ToLower(strings.TrimSpace(input.Source)))
	if source != "" && !source.Valid() {
		return nil, invalid("validation failed: source (must be one of: private quote hospital)",
			ValidationError{Field: "source", Message: "must be one of: private quote hospital"})
	}
	if input.Limit > maxListLimit {
		input.Limit = maxListLimit
	}

	leads, err := uc.LeadRepo.List(ctx, entity.LeadFilter{
		StatusID: input.StatusID,
		Source:   source,
		Since:    input.Since,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, translateRepoError("query_leads.list", err)
	}
	return leads, nil
}

func (uc *QueryLeadsUseCase) History(ctx context.Context, leadID string) ([]entity.StatusChangeEvent, error) {
	if _, err := uc.LeadRepo.FindByID(ctx, leadID); err != nil {
		return nil, translateRepoError("query_leads.history.find", err)
	}

	events, err := uc.StatusRepo.History(ctx, leadID)
	if err != nil {
		return nil, translateRepoError("query_leads.history", err)
	}
	return events, nil
}

func (uc *QueryLeadsUseCase) Statuses(ctx context.Context) ([]entity.LeadStatus, error) {
	statuses, err := uc.StatusRepo.ListStatuses(ctx)
	if err != nil {
		return nil, translateRepoError("query_leads.statuses", err)
	}
	return statuses, nil
}
