package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateEmail(ctx context.Context, id, email string, at time.Time) error {
	args := m.Called(ctx, id, email, at)
	return args.Error(0)
}

type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) ListStatuses(ctx context.Context) ([]entity.LeadStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeadStatus), args.Error(1)
}

func (m *MockStatusRepository) ApplyChange(ctx context.Context, change entity.StatusChange) (*entity.StatusChangeEvent, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StatusChangeEvent), args.Error(1)
}

func (m *MockStatusRepository) History(ctx context.Context, leadID string) ([]entity.StatusChangeEvent, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StatusChangeEvent), args.Error(1)
}

type MockIntakeRepository struct {
	mock.Mock
}

func (m *MockIntakeRepository) Unify(ctx context.Context, rec entity.IntakeRecord, phoneKey string, now time.Time) (*entity.Lead, bool, error) {
	args := m.Called(ctx, rec, phoneKey, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Lead), args.Bool(1), args.Error(2)
}

func (m *MockIntakeRepository) FindForLead(ctx context.Context, lead *entity.Lead) (entity.IntakeRecord, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.IntakeRecord), args.Error(1)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) LoadSnapshotData(ctx context.Context, since time.Time, recentLimit int) (*entity.SnapshotData, error) {
	args := m.Called(ctx, since, recentLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SnapshotData), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, n entity.StatusNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockLeadResolver struct {
	mock.Mock
}

func (m *MockLeadResolver) Execute(ctx context.Context, leadID string) (*entity.EnrichedLead, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EnrichedLead), args.Error(1)
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
