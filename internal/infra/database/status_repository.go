package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/medtour-leads/internal/entity"
)

type StatusRepository struct {
	DB *sql.DB
}

func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{DB: db}
}

func (r *StatusRepository) ListStatuses(ctx context.Context) ([]entity.LeadStatus, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM lead_status ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	statuses := []entity.LeadStatus{}
	for rows.Next() {
		var s entity.LeadStatus
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// ApplyChange moves a lead to a new status and appends the matching audit
// event in one transaction. The lead row is locked for the duration so
// concurrent changes on the same lead serialize; when ExpectedStatusID is
// set and no longer matches, nothing is written and ErrStatusConflict is
// returned.
func (r *StatusRepository) ApplyChange(ctx context.Context, change entity.StatusChange) (*entity.StatusChangeEvent, error) {
	var event *entity.StatusChangeEvent

	err := withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		var (
			currentID   int
			currentName string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT l.lead_status_id, s.name
			   FROM leads l JOIN lead_status s ON s.id = l.lead_status_id
			  WHERE l.id = $1
			  FOR UPDATE OF l`,
			change.LeadID,
		).Scan(&currentID, &currentName)
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ErrLeadNotFound
		}
		if err != nil {
			return fmt.Errorf("lock lead: %w", err)
		}

		var newName string
		err = tx.QueryRowContext(ctx, `SELECT name FROM lead_status WHERE id = $1`, change.NewStatusID).Scan(&newName)
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ErrStatusNotFound
		}
		if err != nil {
			return fmt.Errorf("find status: %w", err)
		}

		if change.ExpectedStatusID != nil && *change.ExpectedStatusID != currentID {
			return entity.ErrStatusConflict
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE leads
			    SET lead_status_id = $2,
			        assigned_to = COALESCE($3, assigned_to),
			        version = version + 1,
			        updated_at = $4
			  WHERE id = $1`,
			change.LeadID, change.NewStatusID, change.AssignedTo, change.At,
		)
		if isForeignKeyViolation(err) {
			return entity.ErrStatusNotFound
		}
		if err != nil {
			return fmt.Errorf("update lead status: %w", err)
		}

		ev, err := insertEvent(ctx, tx, change.LeadID, &currentID, change.NewStatusID, change.Note, change.Actor, change.At)
		if err != nil {
			return err
		}
		ev.OldStatus = &currentName
		ev.NewStatus = newName
		event = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// History returns the audit trail of a lead in insertion order.
func (r *StatusRepository) History(ctx context.Context, leadID string) ([]entity.StatusChangeEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT e.id, e.lead_id, e.old_status_id, os.name, e.new_status_id, ns.name,
		        e.note, e.actor, e.created_at
		   FROM status_change_events e
		   LEFT JOIN lead_status os ON os.id = e.old_status_id
		   JOIN lead_status ns ON ns.id = e.new_status_id
		  WHERE e.lead_id = $1
		  ORDER BY e.id ASC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	defer rows.Close()

	events := []entity.StatusChangeEvent{}
	for rows.Next() {
		var (
			ev      entity.StatusChangeEvent
			oldID   sql.NullInt64
			oldName sql.NullString
			note    sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.LeadID, &oldID, &oldName, &ev.NewStatusID, &ev.NewStatus,
			&note, &ev.Actor, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		if oldID.Valid {
			id := int(oldID.Int64)
			ev.OldStatusID = &id
		}
		ev.OldStatus = stringPtr(oldName)
		ev.Note = stringPtr(note)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func insertEvent(ctx context.Context, q querier, leadID string, oldStatusID *int, newStatusID int, note *string, actor string, at time.Time) (*entity.StatusChangeEvent, error) {
	ev := &entity.StatusChangeEvent{
		LeadID:      leadID,
		OldStatusID: oldStatusID,
		NewStatusID: newStatusID,
		Note:        note,
		Actor:       actor,
	}
	err := q.QueryRowContext(ctx,
		`INSERT INTO status_change_events (lead_id, old_status_id, new_status_id, note, actor, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		leadID, oldStatusID, newStatusID, note, actor, at,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert status event: %w", err)
	}
	return ev, nil
}
