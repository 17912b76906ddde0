package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

type LeadRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error)
	UpdateEmail(ctx context.Context, id, email string, at time.Time) error
}

type StatusRepository interface {
	ListStatuses(ctx context.Context) ([]entity.LeadStatus, error)
	ApplyChange(ctx context.Context, change entity.StatusChange) (*entity.StatusChangeEvent, error)
	History(ctx context.Context, leadID string) ([]entity.StatusChangeEvent, error)
}

type IntakeRepository interface {
	Unify(ctx context.Context, rec entity.IntakeRecord, phoneKey string, now time.Time) (*entity.Lead, bool, error)
	FindForLead(ctx context.Context, lead *entity.Lead) (entity.IntakeRecord, error)
}

type AnalyticsRepository interface {
	LoadSnapshotData(ctx context.Context, since time.Time, recentLimit int) (*entity.SnapshotData, error)
}

// Notifier hands a status change to the email/calendar side effects. A
// returned error is reported as a warning only.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, n entity.StatusNotification) error
}

// LeadResolver is the read side of unification, shared by the status
// workflow to find an address to notify.
type LeadResolver interface {
	Execute(ctx context.Context, leadID string) (*entity.EnrichedLead, error)
}
