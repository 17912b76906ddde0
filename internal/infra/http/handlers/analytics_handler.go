package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/usecase"
)

const (
	defaultAnalyticsDays = 7
	maxAnalyticsDays     = 365
)

type SnapshotComputer interface {
	Execute(ctx context.Context, since time.Time) (*entity.AnalyticsSnapshot, error)
}

type AnalyticsHandler struct {
	Snapshot SnapshotComputer
	Now      func() time.Time
}

func NewAnalyticsHandler(snapshot SnapshotComputer) *AnalyticsHandler {
	return &AnalyticsHandler{Snapshot: snapshot, Now: time.Now}
}

// Handle serves GET /admin/analytics?days=N. The window is the last N days
// counted back from now.
func (h *AnalyticsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	days := defaultAnalyticsDays
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAnalyticsDays {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   usecase.CodeValidation,
				Message: "days must be an integer between 1 and 365",
				Fields:  []usecase.ValidationError{{Field: "days", Message: "must be between 1 and 365"}},
			})
			return
		}
		days = n
	}

	since := h.Now().UTC().AddDate(0, 0, -days)
	snapshot, err := h.Snapshot.Execute(r.Context(), since)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
