package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

type AnalyticsRepository struct {
	DB *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// LoadSnapshotData reads the three sets inside one read-only repeatable-read
// transaction so they agree with each other.
func (r *AnalyticsRepository) LoadSnapshotData(ctx context.Context, since time.Time, recentLimit int) (*entity.SnapshotData, error) {
	data := &entity.SnapshotData{}

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := withTx(ctx, r.DB, opts, func(tx *sql.Tx) error {
		var err error
		data.InScope, err = querySummaries(ctx, tx,
			`SELECT l.id, l.patient_name, s.name, l.source, l.created_at
			   FROM leads l JOIN lead_status s ON s.id = l.lead_status_id
			  WHERE l.created_at >= $1
			  ORDER BY l.created_at DESC, l.id ASC`,
			since,
		)
		if err != nil {
			return fmt.Errorf("in-scope leads: %w", err)
		}

		data.Recent, err = querySummaries(ctx, tx,
			`SELECT l.id, l.patient_name, s.name, l.source, l.created_at
			   FROM leads l JOIN lead_status s ON s.id = l.lead_status_id
			  ORDER BY l.created_at DESC, l.id ASC
			  LIMIT $1`,
			recentLimit,
		)
		if err != nil {
			return fmt.Errorf("recent leads: %w", err)
		}

		data.Responses, err = queryFirstResponses(ctx, tx, since)
		if err != nil {
			return fmt.Errorf("first responses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func querySummaries(ctx context.Context, q querier, query string, args ...any) ([]entity.LeadSummary, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.LeadSummary{}
	for rows.Next() {
		var (
			s      entity.LeadSummary
			source string
		)
		if err := rows.Scan(&s.ID, &s.PatientName, &s.StatusName, &source, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Source = entity.Source(source)
		out = append(out, s)
	}
	return out, rows.Err()
}

// queryFirstResponses pairs each in-scope lead with the earliest event that
// moved it out of New. New to New note events do not count.
func queryFirstResponses(ctx context.Context, q querier, since time.Time) ([]entity.FirstResponse, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT l.id, l.created_at, MIN(e.created_at)
		   FROM leads l
		   JOIN status_change_events e ON e.lead_id = l.id
		   JOIN lead_status os ON os.id = e.old_status_id
		  WHERE l.created_at >= $1 AND os.name = $2
		    AND e.new_status_id <> e.old_status_id
		  GROUP BY l.id, l.created_at
		  ORDER BY l.id`,
		since, entity.StatusNameNew,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.FirstResponse{}
	for rows.Next() {
		var fr entity.FirstResponse
		if err := rows.Scan(&fr.LeadID, &fr.CreatedAt, &fr.RespondedAt); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}
