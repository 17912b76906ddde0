package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/infra/http/middleware"
	"github.com/xavierca1/medtour-leads/internal/usecase"
)

type IntakeCapturer interface {
	Execute(ctx context.Context, rec entity.IntakeRecord) (*usecase.CaptureIntakeOutput, error)
}

// IntakeHandler receives the public forms. Each form posts to its own path
// and is rate limited per client IP.
type IntakeHandler struct {
	Capture     IntakeCapturer
	rateLimiter *RateLimiter
}

func NewIntakeHandler(capture IntakeCapturer, limiter *RateLimiter) *IntakeHandler {
	return &IntakeHandler{
		Capture:     capture,
		rateLimiter: limiter,
	}
}

func (h *IntakeHandler) CaptureQuote(w http.ResponseWriter, r *http.Request) {
	h.capture(w, r, &entity.QuoteRequest{})
}

func (h *IntakeHandler) CaptureConsultation(w http.ResponseWriter, r *http.Request) {
	h.capture(w, r, &entity.PrivateConsultation{})
}

func (h *IntakeHandler) CaptureHospital(w http.ResponseWriter, r *http.Request) {
	h.capture(w, r, &entity.HospitalInquiry{})
}

func (h *IntakeHandler) capture(w http.ResponseWriter, r *http.Request, rec entity.IntakeRecord) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}

	if !decodeJSON(w, r, rec) {
		return
	}
	// Server-assigned fields are never taken from the form.
	base := rec.Base()
	base.ID, base.CorrelationID = "", ""
	base.CreatedAt = time.Time{}

	out, err := h.Capture.Execute(r.Context(), rec)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadCaptured(string(rec.Source()), out.LeadCreated)

	status := http.StatusOK
	if out.LeadCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, out)
}
