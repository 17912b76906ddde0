package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

const leadColumns = `
	l.id, l.correlation_id, l.patient_name, l.phone, l.phone_key, l.email,
	l.country, l.specialty, l.medical_problem, l.source, l.lead_status_id,
	s.name, l.assigned_to, l.version, l.created_at, l.updated_at`

const leadFrom = `FROM leads l JOIN lead_status s ON s.id = l.lead_status_id`

const defaultListLimit = 50

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	return findLead(ctx, r.DB, id)
}

// List returns leads newest first, narrowed by the filter.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	var (
		where []string
		args  []any
	)
	if filter.StatusID > 0 {
		args = append(args, filter.StatusID)
		where = append(where, fmt.Sprintf("l.lead_status_id = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, string(filter.Source))
		where = append(where, fmt.Sprintf("l.source = $%d", len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		where = append(where, fmt.Sprintf("l.created_at >= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := "SELECT " + leadColumns + " " + leadFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY l.created_at DESC, l.id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// UpdateEmail overwrites the stored email and bumps the version.
func (r *LeadRepository) UpdateEmail(ctx context.Context, id, email string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET email = $2, version = version + 1, updated_at = $3 WHERE id = $1`,
		id, email, at,
	)
	if err != nil {
		return fmt.Errorf("update lead email: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead email: %w", err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func findLead(ctx context.Context, q querier, id string) (*entity.Lead, error) {
	row := q.QueryRowContext(ctx, "SELECT "+leadColumns+" "+leadFrom+" WHERE l.id = $1", id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead          entity.Lead
		correlationID sql.NullString
		email         sql.NullString
		assignedTo    sql.NullString
		source        string
	)
	err := row.Scan(
		&lead.ID,
		&correlationID,
		&lead.PatientName,
		&lead.Phone,
		&lead.PhoneKey,
		&email,
		&lead.Country,
		&lead.Specialty,
		&lead.MedicalProblem,
		&source,
		&lead.StatusID,
		&lead.StatusName,
		&assignedTo,
		&lead.Version,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.CorrelationID = correlationID.String
	lead.Email = stringPtr(email)
	lead.AssignedTo = stringPtr(assignedTo)
	lead.Source = entity.Source(source)
	return &lead, nil
}
