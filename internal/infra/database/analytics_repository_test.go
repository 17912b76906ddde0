package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

func TestLoadSnapshotDataReadsOneConsistentView(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := createdAt.AddDate(0, 0, -7)
	summaryCols := []string{"id", "patient_name", "name", "source", "created_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.created_at >= $1")).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows(summaryCols).
			AddRow("lead-1", "Asha Rao", entity.StatusNameContacted, "private", createdAt))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).
		WithArgs(entity.RecentActivityLimit).
		WillReturnRows(sqlmock.NewRows(summaryCols).
			AddRow("lead-1", "Asha Rao", entity.StatusNameContacted, "private", createdAt).
			AddRow("lead-0", "Old Lead", entity.StatusNameLost, "quote", since.Add(-time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("AND e.new_status_id <> e.old_status_id")).
		WithArgs(since, entity.StatusNameNew).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "min"}).
			AddRow("lead-1", createdAt, createdAt.Add(time.Hour)))
	mock.ExpectCommit()

	data, err := NewAnalyticsRepository(db).LoadSnapshotData(context.Background(), since, entity.RecentActivityLimit)

	require.NoError(t, err)
	assert.Len(t, data.InScope, 1)
	assert.Len(t, data.Recent, 2)
	assert.Equal(t, entity.SourceQuote, data.Recent[1].Source)
	require.Len(t, data.Responses, 1)
	assert.Equal(t, time.Hour, data.Responses[0].RespondedAt.Sub(data.Responses[0].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSnapshotDataRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.created_at >= $1")).
		WillReturnError(errors.New("canceling statement due to statement timeout"))
	mock.ExpectRollback()

	_, err = NewAnalyticsRepository(db).LoadSnapshotData(context.Background(), createdAt, entity.RecentActivityLimit)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "in-scope leads")
	assert.NoError(t, mock.ExpectationsWereMet())
}
