package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/medtour-leads/internal/entity"
)

const systemActor = "system"

type IntakeRepository struct {
	DB *sql.DB
}

func NewIntakeRepository(db *sql.DB) *IntakeRepository {
	return &IntakeRepository{DB: db}
}

// Unify stores an intake record and attaches it to the lead sharing its
// source and phone key, creating that lead (status New plus its creation
// event) when none exists. An advisory lock on (source, phone key) keeps two
// simultaneous submissions from creating twin leads.
func (r *IntakeRepository) Unify(ctx context.Context, rec entity.IntakeRecord, phoneKey string, now time.Time) (*entity.Lead, bool, error) {
	var (
		lead    *entity.Lead
		created bool
	)

	err := withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		source := string(rec.Source())
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, source+"|"+phoneKey); err != nil {
			return fmt.Errorf("lock phone key: %w", err)
		}

		row := tx.QueryRowContext(ctx,
			"SELECT "+leadColumns+" "+leadFrom+`
			  WHERE l.source = $1 AND l.phone_key = $2
			  ORDER BY l.created_at ASC, l.id ASC
			  LIMIT 1`,
			source, phoneKey,
		)
		existing, err := scanLead(row)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			lead = entity.NewLeadFromIntake(rec, phoneKey, now)
			if err := insertLead(ctx, tx, lead); err != nil {
				return err
			}
			if _, err := insertEvent(ctx, tx, lead.ID, nil, lead.StatusID, nil, systemActor, now); err != nil {
				return err
			}
			created = true
		case err != nil:
			return fmt.Errorf("find lead by phone: %w", err)
		default:
			lead = existing
			if err := attachToLead(ctx, tx, lead, rec, now); err != nil {
				return err
			}
		}

		base := rec.Base()
		if base.ID == "" {
			base.ID = uuid.New().String()
		}
		base.CorrelationID = lead.CorrelationID
		if base.CreatedAt.IsZero() {
			base.CreatedAt = now
		}
		return insertIntake(ctx, tx, rec)
	})
	if err != nil {
		return nil, false, err
	}
	return lead, created, nil
}

// attachToLead gives legacy leads a correlation id and fills a missing
// email from the new submission.
func attachToLead(ctx context.Context, tx *sql.Tx, lead *entity.Lead, rec entity.IntakeRecord, now time.Time) error {
	changed := false
	if lead.CorrelationID == "" {
		lead.CorrelationID = uuid.New().String()
		changed = true
	}
	if email := rec.ContactEmail(); email != "" && !lead.HasEmail() {
		lead.Email = &email
		changed = true
	}
	if !changed {
		return nil
	}

	lead.Version++
	lead.UpdatedAt = now
	_, err := tx.ExecContext(ctx,
		`UPDATE leads SET correlation_id = $2, email = $3, version = $4, updated_at = $5 WHERE id = $1`,
		lead.ID, lead.CorrelationID, lead.Email, lead.Version, now,
	)
	if err != nil {
		return fmt.Errorf("attach intake to lead: %w", err)
	}
	return nil
}

func insertLead(ctx context.Context, q querier, lead *entity.Lead) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO leads (id, correlation_id, patient_name, phone, phone_key, email, country,
		                    specialty, medical_problem, source, lead_status_id, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		lead.ID, lead.CorrelationID, lead.PatientName, lead.Phone, lead.PhoneKey, lead.Email, lead.Country,
		lead.Specialty, lead.MedicalProblem, string(lead.Source), lead.StatusID, lead.Version, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func insertIntake(ctx context.Context, q querier, rec entity.IntakeRecord) error {
	var err error
	switch v := rec.(type) {
	case *entity.QuoteRequest:
		_, err = q.ExecContext(ctx,
			`INSERT INTO quote_requests (id, correlation_id, patient_name, phone, country, message,
			                             age, gender, city, specialty, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			v.ID, v.CorrelationID, v.PatientName, v.Phone, v.Country, v.Message,
			v.Age, v.Gender, v.City, v.Specialty, v.CreatedAt,
		)
	case *entity.PrivateConsultation:
		_, err = q.ExecContext(ctx,
			`INSERT INTO private_consultations (id, correlation_id, patient_name, phone, country, message,
			                                    email, scheduled_date, scheduled_time, topic, report_url, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			v.ID, v.CorrelationID, v.PatientName, v.Phone, v.Country, v.Message,
			v.Email, v.ScheduledDate, v.ScheduledTime, v.Topic, v.ReportURL, v.CreatedAt,
		)
	case *entity.HospitalInquiry:
		_, err = q.ExecContext(ctx,
			`INSERT INTO hospital_inquiries (id, correlation_id, patient_name, phone, country, message,
			                                 hospital_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			v.ID, v.CorrelationID, v.PatientName, v.Phone, v.Country, v.Message,
			v.HospitalID, v.CreatedAt,
		)
	default:
		return fmt.Errorf("unsupported intake record %T", rec)
	}
	if err != nil {
		return fmt.Errorf("insert %s intake: %w", rec.Source(), err)
	}
	return nil
}

// FindForLead performs the single source-specific lookup behind lead
// resolution: by correlation id when the lead has one, by raw phone
// otherwise. The earliest match wins. A nil record with a nil error means
// no intake row matched.
func (r *IntakeRepository) FindForLead(ctx context.Context, lead *entity.Lead) (entity.IntakeRecord, error) {
	column, key := "phone", lead.Phone
	if lead.CorrelationID != "" {
		column, key = "correlation_id", lead.CorrelationID
	}
	order := " ORDER BY created_at ASC, id ASC LIMIT 1"

	var (
		rec           entity.IntakeRecord
		correlationID sql.NullString
		err           error
	)
	switch lead.Source {
	case entity.SourceQuote:
		q := &entity.QuoteRequest{}
		err = r.DB.QueryRowContext(ctx,
			`SELECT id, correlation_id, patient_name, phone, country, message, age, gender, city, specialty, created_at
			   FROM quote_requests WHERE `+column+` = $1`+order, key,
		).Scan(&q.ID, &correlationID, &q.PatientName, &q.Phone, &q.Country, &q.Message,
			&q.Age, &q.Gender, &q.City, &q.Specialty, &q.CreatedAt)
		rec = q
	case entity.SourcePrivate:
		p := &entity.PrivateConsultation{}
		err = r.DB.QueryRowContext(ctx,
			`SELECT id, correlation_id, patient_name, phone, country, message, email, scheduled_date,
			        scheduled_time, topic, report_url, created_at
			   FROM private_consultations WHERE `+column+` = $1`+order, key,
		).Scan(&p.ID, &correlationID, &p.PatientName, &p.Phone, &p.Country, &p.Message,
			&p.Email, &p.ScheduledDate, &p.ScheduledTime, &p.Topic, &p.ReportURL, &p.CreatedAt)
		rec = p
	case entity.SourceHospital:
		h := &entity.HospitalInquiry{}
		err = r.DB.QueryRowContext(ctx,
			`SELECT id, correlation_id, patient_name, phone, country, message, hospital_id, created_at
			   FROM hospital_inquiries WHERE `+column+` = $1`+order, key,
		).Scan(&h.ID, &correlationID, &h.PatientName, &h.Phone, &h.Country, &h.Message,
			&h.HospitalID, &h.CreatedAt)
		rec = h
	default:
		return nil, fmt.Errorf("unknown lead source %q", lead.Source)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s intake: %w", lead.Source, err)
	}
	rec.Base().CorrelationID = correlationID.String
	return rec, nil
}
