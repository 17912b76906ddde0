package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

func TestUnifyCreatesLeadWithCreationEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := &entity.QuoteRequest{
		IntakeBase: entity.IntakeBase{PatientName: "Asha Rao", Phone: "+91 98765 43210"},
		Specialty:  "Cardiology",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WithArgs("quote|+919876543210").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("l.source = $1 AND l.phone_key = $2")).
		WithArgs("quote", "+919876543210").
		WillReturnRows(sqlmock.NewRows(leadCols))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leads")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO status_change_events")).
		WithArgs(sqlmock.AnyArg(), nil, entity.StatusNew, nil, "system", createdAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, createdAt))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quote_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lead, created, err := NewIntakeRepository(db).Unify(context.Background(), rec, "+919876543210", createdAt)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.StatusNew, lead.StatusID)
	assert.Equal(t, "Cardiology", lead.Specialty)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, lead.CorrelationID, rec.CorrelationID)
	assert.Equal(t, createdAt, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnifyAttachesAndBackfillsEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := &entity.PrivateConsultation{
		IntakeBase: entity.IntakeBase{PatientName: "Asha Rao", Phone: "098765 43210"},
		Email:      "asha@example.com",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("l.source = $1 AND l.phone_key = $2")).
		WithArgs("private", "+919876543210").
		WillReturnRows(leadRow(sqlmock.NewRows(leadCols), "lead-1", nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads SET correlation_id = $2, email = $3, version = $4")).
		WithArgs("lead-1", "corr-lead-1", "asha@example.com", 2, createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO private_consultations")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lead, created, err := NewIntakeRepository(db).Unify(context.Background(), rec, "+919876543210", createdAt)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "lead-1", lead.ID)
	assert.Equal(t, "asha@example.com", *lead.Email)
	assert.Equal(t, "corr-lead-1", rec.CorrelationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnifyAttachWithoutChangesSkipsUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := &entity.HospitalInquiry{
		IntakeBase: entity.IntakeBase{PatientName: "Asha Rao", Phone: "9876543210"},
		HospitalID: "h-1",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("l.phone_key = $2")).
		WillReturnRows(leadRow(sqlmock.NewRows(leadCols), "lead-1", "a@x.com"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hospital_inquiries")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, created, err := NewIntakeRepository(db).Unify(context.Background(), rec, "+919876543210", createdAt)

	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindForLeadByCorrelationID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "correlation_id", "patient_name", "phone", "country", "message", "email",
		"scheduled_date", "scheduled_time", "topic", "report_url", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM private_consultations WHERE correlation_id = $1 ORDER BY created_at ASC, id ASC LIMIT 1")).
		WithArgs("corr-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("in-1", "corr-1", "Asha Rao", "+91 98765 43210", "India", "", "b@y.com",
				"2026-03-20", "10:30", "Second opinion", "", createdAt))

	rec, err := NewIntakeRepository(db).FindForLead(context.Background(), &entity.Lead{
		ID: "lead-1", CorrelationID: "corr-1", Source: entity.SourcePrivate,
	})

	require.NoError(t, err)
	p, ok := rec.(*entity.PrivateConsultation)
	require.True(t, ok)
	assert.Equal(t, "b@y.com", p.Email)
	assert.Equal(t, "corr-1", p.CorrelationID)
}

func TestFindForLeadFallsBackToPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM quote_requests WHERE phone = $1")).
		WithArgs("9876543210").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := NewIntakeRepository(db).FindForLead(context.Background(), &entity.Lead{
		ID: "lead-1", Phone: "9876543210", Source: entity.SourceQuote,
	})

	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFindForLeadUnknownSource(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewIntakeRepository(db).FindForLead(context.Background(), &entity.Lead{Source: "fax"})
	assert.Error(t, err)
}
