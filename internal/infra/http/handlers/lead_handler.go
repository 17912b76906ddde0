package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/medtour-leads/internal/entity"
	"github.com/xavierca1/medtour-leads/internal/infra/http/middleware"
	"github.com/xavierca1/medtour-leads/internal/usecase"
)

const adminUserHeader = "X-Admin-User"

type LeadResolver interface {
	Execute(ctx context.Context, leadID string) (*entity.EnrichedLead, error)
}

type StatusChanger interface {
	Execute(ctx context.Context, input usecase.ChangeStatusInput) (*usecase.ChangeStatusOutput, error)
}

type EmailBackfiller interface {
	Execute(ctx context.Context, input usecase.BackfillEmailInput) (*usecase.BackfillEmailOutput, error)
}

type LeadQueries interface {
	List(ctx context.Context, input usecase.ListLeadsInput) ([]*entity.Lead, error)
	History(ctx context.Context, leadID string) ([]entity.StatusChangeEvent, error)
	Statuses(ctx context.Context) ([]entity.LeadStatus, error)
}

// LeadHandler serves the admin lead views. Authentication happens in front
// of the service; the caller's name arrives in X-Admin-User.
type LeadHandler struct {
	Resolver   LeadResolver
	Changer    StatusChanger
	Backfiller EmailBackfiller
	Queries    LeadQueries
}

func NewLeadHandler(resolver LeadResolver, changer StatusChanger, backfiller EmailBackfiller, queries LeadQueries) *LeadHandler {
	return &LeadHandler{
		Resolver:   resolver,
		Changer:    changer,
		Backfiller: backfiller,
		Queries:    queries,
	}
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Resolver.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type ChangeStatusResponse struct {
	Lead     *entity.EnrichedLead      `json:"lead"`
	Event    *entity.StatusChangeEvent `json:"event"`
	Warnings []usecase.Warning         `json:"warnings"`
}

func (h *LeadHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChangeStatusInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.Actor = r.Header.Get(adminUserHeader)

	out, err := h.Changer.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordStatusChange(out.Event.NewStatus)
	for _, warn := range out.Warnings {
		middleware.RecordNotificationFailure(warn.Channel)
	}

	writeJSON(w, http.StatusOK, ChangeStatusResponse{
		Lead:     out.Lead,
		Event:    out.Event,
		Warnings: out.Warnings,
	})
}

func (h *LeadHandler) BackfillEmail(w http.ResponseWriter, r *http.Request) {
	var input usecase.BackfillEmailInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")

	out, err := h.Backfiller.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LeadHandler) History(w http.ResponseWriter, r *http.Request) {
	events, err := h.Queries.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *LeadHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Queries.Statuses(r.Context())
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": statuses})
}

// List accepts status_id, source, since (RFC 3339), limit and offset.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.ListLeadsInput{Source: q.Get("source")}

	var ok bool
	if input.StatusID, ok = intParam(w, q.Get("status_id"), "status_id"); !ok {
		return
	}
	if input.Limit, ok = intParam(w, q.Get("limit"), "limit"); !ok {
		return
	}
	if input.Offset, ok = intParam(w, q.Get("offset"), "offset"); !ok {
		return
	}
	if raw := strings.TrimSpace(q.Get("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   usecase.CodeValidation,
				Message: "since must be an RFC 3339 timestamp",
				Fields:  []usecase.ValidationError{{Field: "since", Message: "is invalid"}},
			})
			return
		}
		input.Since = since
	}

	leads, err := h.Queries.List(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   usecase.CodeValidation,
			Message: name + " must be a non-negative integer",
			Fields:  []usecase.ValidationError{{Field: name, Message: "is invalid"}},
		})
		return 0, false
	}
	return n, true
}
