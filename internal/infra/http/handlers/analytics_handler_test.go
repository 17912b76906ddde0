package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newAnalyticsHandler(snapshot *MockSnapshotComputer) *AnalyticsHandler {
	h := NewAnalyticsHandler(snapshot)
	h.Now = func() time.Time { return fixedNow }
	return h
}

func TestAnalyticsDefaultsToSevenDays(t *testing.T) {
	snapshot := new(MockSnapshotComputer)
	snapshot.On("Execute", mock.Anything, fixedNow.AddDate(0, 0, -7)).
		Return(&entity.AnalyticsSnapshot{TotalLeads: 3}, nil)

	rec := httptest.NewRecorder()
	newAnalyticsHandler(snapshot).Handle(rec, httptest.NewRequest(http.MethodGet, "/admin/analytics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_leads":3`)
	snapshot.AssertExpectations(t)
}

func TestAnalyticsAcceptsSupportedWindows(t *testing.T) {
	for _, days := range []int{7, 30, 90} {
		snapshot := new(MockSnapshotComputer)
		snapshot.On("Execute", mock.Anything, fixedNow.AddDate(0, 0, -days)).
			Return(&entity.AnalyticsSnapshot{}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/analytics?days="+strconv.Itoa(days), nil)
		newAnalyticsHandler(snapshot).Handle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "days=%d", days)
		snapshot.AssertExpectations(t)
	}
}

func TestAnalyticsRejectsBadDays(t *testing.T) {
	for _, raw := range []string{"0", "-3", "366", "week"} {
		snapshot := new(MockSnapshotComputer)

		rec := httptest.NewRecorder()
		newAnalyticsHandler(snapshot).Handle(rec, httptest.NewRequest(http.MethodGet, "/admin/analytics?days="+raw, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", raw)
		snapshot.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	}
}
