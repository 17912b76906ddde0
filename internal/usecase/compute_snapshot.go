package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

type ComputeSnapshotUseCase struct {
	AnalyticsRepo AnalyticsRepository
}

func NewComputeSnapshotUseCase(repo AnalyticsRepository) *ComputeSnapshotUseCase {
	return &ComputeSnapshotUseCase{AnalyticsRepo: repo}
}

// Execute recomputes the pipeline rollup for leads created at or after
// since. Nothing is cached between calls.
func (uc *ComputeSnapshotUseCase) Execute(ctx context.Context, since time.Time) (*entity.AnalyticsSnapshot, error) {
	if since.IsZero() {
		return nil, invalid("validation failed: since (is required)",
			ValidationError{Field: "since", Message: "is required"})
	}

	data, err := uc.AnalyticsRepo.LoadSnapshotData(ctx, since, entity.RecentActivityLimit)
	if err != nil {
		return nil, translateRepoError("compute_snapshot.load", err)
	}

	return entity.BuildSnapshot(since, data.InScope, data.Recent, data.Responses), nil
}
