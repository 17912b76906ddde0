package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/usecase"
)

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

type MockStatusChanger struct {
	mock.Mock
}

func (m *MockStatusChanger) Execute(ctx context.Context, input usecase.ChangeStatusInput) (*usecase.ChangeStatusOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ChangeStatusOutput), args.Error(1)
}

type MockEmailBackfiller struct {
	mock.Mock
}

func (m *MockEmailBackfiller) Execute(ctx context.Context, input usecase.BackfillEmailInput) (*usecase.BackfillEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.BackfillEmailOutput), args.Error(1)
}

type MockLeadQueries struct {
	mock.Mock
}

func (m *MockLeadQueries) List(ctx context.Context, input usecase.ListLeadsInput) ([]*entity.Lead, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadQueries) History(ctx context.Context, leadID string) ([]entity.StatusChangeEvent, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StatusChangeEvent), args.Error(1)
}

func (m *MockLeadQueries) Statuses(ctx context.Context) ([]entity.LeadStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeadStatus), args.Error(1)
}

type MockIntakeCapturer struct {
	mock.Mock
}

func (m *MockIntakeCapturer) Execute(ctx context.Context, rec entity.IntakeRecord) (*usecase.CaptureIntakeOutput, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CaptureIntakeOutput), args.Error(1)
}

type MockSnapshotComputer struct {
	mock.Mock
}

func (m *MockSnapshotComputer) Execute(ctx context.Context, since time.Time) (*entity.AnalyticsSnapshot, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AnalyticsSnapshot), args.Error(1)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
