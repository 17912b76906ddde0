package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

var changedAt = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func contactChange() entity.StatusChange {
	note := "called"
	expected := entity.StatusNew
	return entity.StatusChange{
		LeadID:           "lead-1",
		NewStatusID:      entity.StatusContacted,
		ExpectedStatusID: &expected,
		Note:             &note,
		Actor:            "priya",
		At:               changedAt,
	}
}

func expectLockLead(mock sqlmock.Sqlmock, statusID int, name string) {
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF l")).
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows([]string{"lead_status_id", "name"}).AddRow(statusID, name))
}

func TestApplyChangeCommitsStatusAndEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLockLead(mock, entity.StatusNew, entity.StatusNameNew)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM lead_status WHERE id = $1")).
		WithArgs(entity.StatusContacted).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(entity.StatusNameContacted))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads")).
		WithArgs("lead-1", entity.StatusContacted, nil, changedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO status_change_events")).
		WithArgs("lead-1", entity.StatusNew, entity.StatusContacted, "called", "priya", changedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, changedAt))
	mock.ExpectCommit()

	ev, err := NewStatusRepository(db).ApplyChange(context.Background(), contactChange())

	require.NoError(t, err)
	assert.Equal(t, int64(42), ev.ID)
	assert.Equal(t, entity.StatusNew, *ev.OldStatusID)
	assert.Equal(t, entity.StatusNameNew, *ev.OldStatus)
	assert.Equal(t, entity.StatusNameContacted, ev.NewStatus)
	assert.Equal(t, "priya", ev.Actor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangeUnknownLead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF l")).
		WillReturnRows(sqlmock.NewRows([]string{"lead_status_id", "name"}))
	mock.ExpectRollback()

	_, err = NewStatusRepository(db).ApplyChange(context.Background(), contactChange())

	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangeUnknownStatusWritesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLockLead(mock, entity.StatusNew, entity.StatusNameNew)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM lead_status")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectRollback()

	change := contactChange()
	change.NewStatusID = 99
	_, err = NewStatusRepository(db).ApplyChange(context.Background(), change)

	assert.ErrorIs(t, err, entity.ErrStatusNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangeStaleExpectedStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLockLead(mock, entity.StatusContacted, entity.StatusNameContacted)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM lead_status")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(entity.StatusNameContacted))
	mock.ExpectRollback()

	_, err = NewStatusRepository(db).ApplyChange(context.Background(), contactChange())

	assert.ErrorIs(t, err, entity.ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangeRollsBackWhenEventInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLockLead(mock, entity.StatusNew, entity.StatusNameNew)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM lead_status")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(entity.StatusNameContacted))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO status_change_events")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = NewStatusRepository(db).ApplyChange(context.Background(), contactChange())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyChangeForeignKeyViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectLockLead(mock, entity.StatusNew, entity.StatusNameNew)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM lead_status")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(entity.StatusNameContacted))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leads")).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	mock.ExpectRollback()

	_, err = NewStatusRepository(db).ApplyChange(context.Background(), contactChange())

	assert.ErrorIs(t, err, entity.ErrStatusNotFound)
}

func TestHistoryMapsCreationEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "lead_id", "old_status_id", "old_name", "new_status_id", "new_name", "note", "actor", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM status_change_events e")).
		WithArgs("lead-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "lead-1", nil, nil, entity.StatusNew, entity.StatusNameNew, nil, "system", changedAt).
			AddRow(2, "lead-1", entity.StatusNew, entity.StatusNameNew, entity.StatusContacted, entity.StatusNameContacted, "called", "priya", changedAt))

	events, err := NewStatusRepository(db).History(context.Background(), "lead-1")

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Nil(t, events[0].OldStatusID)
	assert.Nil(t, events[0].Note)
	assert.Equal(t, "system", events[0].Actor)
	assert.Equal(t, entity.StatusNew, *events[1].OldStatusID)
	assert.Equal(t, "called", *events[1].Note)
}

func TestListStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM lead_status ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, entity.StatusNameNew).
			AddRow(5, entity.StatusNameLost))

	statuses, err := NewStatusRepository(db).ListStatuses(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []entity.LeadStatus{{ID: 1, Name: entity.StatusNameNew}, {ID: 5, Name: entity.StatusNameLost}}, statuses)
}
