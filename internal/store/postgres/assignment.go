package postgres

import (
	"context"
	"fmt"
	"time"

	"fleetops/internal/store"

	"github.com/lib/pq"
)

const assignmentColumns = `id, task_id, technician_id, status, method, rejection_reason,
	assigned_at, responded_at, started_at, completed_at`

// CreateAssignment inserts a new assignment row and fills in its generated ID.
func (s *Store) CreateAssignment(ctx context.Context, tx store.DBTransaction, a *store.Assignment) error {
	query := `
		INSERT INTO task_assignments
			(task_id, technician_id, status, method, rejection_reason,
			 assigned_at, responded_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := s.getExecutor(tx).QueryRowContext(ctx, query,
		a.TaskID, a.TechnicianID, a.Status, a.Method, a.RejectionReason,
		a.AssignedAt, a.RespondedAt, a.StartedAt, a.CompletedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create assignment for task %s: %w", a.TaskID, err)
	}

	return nil
}

func (s *Store) GetAssignmentByID(ctx context.Context, id int64) (*store.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM task_assignments WHERE id = $1", assignmentColumns)

	var a store.Assignment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.TaskID, &a.TechnicianID, &a.Status, &a.Method, &a.RejectionReason,
		&a.AssignedAt, &a.RespondedAt, &a.StartedAt, &a.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// UpdateAssignment overwrites the mutable columns of an assignment row.
func (s *Store) UpdateAssignment(ctx context.Context, tx store.DBTransaction, a *store.Assignment) error {
	query := `
		UPDATE task_assignments
		SET status = $2, rejection_reason = $3, responded_at = $4,
		    started_at = $5, completed_at = $6
		WHERE id = $1
	`

	res, err := s.getExecutor(tx).ExecContext(ctx, query,
		a.ID, a.Status, a.RejectionReason, a.RespondedAt, a.StartedAt, a.CompletedAt,
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (s *Store) ListAssignmentsByTechnician(ctx context.Context, technicianID int64, statuses []store.AssignmentStatus) ([]store.Assignment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM task_assignments WHERE technician_id = $1 ORDER BY assigned_at DESC",
		assignmentColumns,
	)
	args := []interface{}{technicianID}

	if len(statuses) > 0 {
		query = fmt.Sprintf(`
			SELECT %s FROM task_assignments
			WHERE technician_id = $1 AND status = ANY($2)
			ORDER BY assigned_at DESC
		`, assignmentColumns)
		values := make([]string, len(statuses))
		for i, status := range statuses {
			values[i] = string(status)
		}
		args = append(args, pq.Array(values))
	}

	return s.queryAssignments(ctx, query, args...)
}

func (s *Store) ListAssignmentsByTask(ctx context.Context, taskID string) ([]store.Assignment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM task_assignments WHERE task_id = $1 ORDER BY assigned_at ASC",
		assignmentColumns,
	)
	return s.queryAssignments(ctx, query, taskID)
}

func (s *Store) ListAssignmentsBetween(ctx context.Context, start, end time.Time) ([]store.Assignment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM task_assignments
		WHERE assigned_at >= $1 AND assigned_at <= $2
		ORDER BY assigned_at ASC
	`, assignmentColumns)
	return s.queryAssignments(ctx, query, start, end)
}

// CountActiveAssignments counts a technician's ACCEPTED and IN_PROGRESS rows.
func (s *Store) CountActiveAssignments(ctx context.Context, technicianID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM task_assignments
		WHERE technician_id = $1 AND status = ANY($2)
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, technicianID,
		pq.Array([]string{string(store.AssignmentAccepted), string(store.AssignmentInProgress)}),
	).Scan(&count)
	return count, err
}

func (s *Store) ListStalePendingAssignments(ctx context.Context, cutoff time.Time) ([]store.Assignment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM task_assignments
		WHERE status = $1 AND assigned_at < $2
		ORDER BY assigned_at ASC
	`, assignmentColumns)
	return s.queryAssignments(ctx, query, store.AssignmentPending, cutoff)
}

func (s *Store) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]store.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []store.Assignment
	for rows.Next() {
		var a store.Assignment
		if err := rows.Scan(
			&a.ID, &a.TaskID, &a.TechnicianID, &a.Status, &a.Method, &a.RejectionReason,
			&a.AssignedAt, &a.RespondedAt, &a.StartedAt, &a.CompletedAt,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
