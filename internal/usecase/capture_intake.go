package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/logger"
	"github.com/xavierca1/medtour-leads/internal/phone"
)

type CaptureIntakeUseCase struct {
	IntakeRepo    IntakeRepository
	DefaultRegion string
	Now           func() time.Time
}

func NewCaptureIntakeUseCase(intakeRepo IntakeRepository, defaultRegion string) *CaptureIntakeUseCase {
	return &CaptureIntakeUseCase{
		IntakeRepo:    intakeRepo,
		DefaultRegion: defaultRegion,
		Now:           time.Now,
	}
}

// Execute validates a public form submission and unifies it into the lead
// registry.
func (uc *CaptureIntakeUseCase) Execute(ctx context.Context, rec entity.IntakeRecord) (*CaptureIntakeOutput, error) {
	if rec == nil {
		return nil, invalid("intake record is required")
	}

	base := rec.Base()
	base.PatientName = strings.TrimSpace(base.PatientName)
	base.Phone = strings.TrimSpace(base.Phone)
	base.Country = strings.TrimSpace(base.Country)
	base.Message = strings.TrimSpace(base.Message)
	if p, ok := rec.(*entity.PrivateConsultation); ok {
		p.Email = strings.TrimSpace(p.Email)
	}

	if err := validateStruct(rec); err != nil {
		return nil, err
	}

	key, err := phone.Key(base.Phone, phone.Region(base.Country, uc.DefaultRegion))
	if err != nil {
		return nil, invalid("validation failed: phone (must be a valid phone number)",
			ValidationError{Field: "phone", Message: "must be a valid phone number"})
	}

	now := uc.Now().UTC()
	lead, created, err := uc.IntakeRepo.Unify(ctx, rec, key, now)
	if err != nil {
		return nil, translateRepoError("capture_intake.unify", err)
	}

	logger.WithFields(map[string]interface{}{
		"lead_id":      lead.ID,
		"intake_id":    base.ID,
		"source":       rec.Source(),
		"lead_created": created,
	}).Info("intake unified")

	return &CaptureIntakeOutput{
		LeadID:      lead.ID,
		IntakeID:    base.ID,
		LeadCreated: created,
	}, nil
}
