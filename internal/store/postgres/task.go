package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fleetops/internal/store"
)

const taskColumns = `id, description, priority, status, completion_pct, estimated_minutes,
	required_skills, required_parts, equipment_id, technician_id,
	created_at, due_date, last_updated, completed_at`

// CreateTask inserts a new task row.
// Skill and part lists are stored as JSON arrays.
func (s *Store) CreateTask(ctx context.Context, tx store.DBTransaction, task *store.Task) error {
	skills, parts, err := marshalTaskLists(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO maintenance_tasks
			(id, description, priority, status, completion_pct, estimated_minutes,
			 required_skills, required_parts, equipment_id, technician_id,
			 created_at, due_date, last_updated, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = s.getExecutor(tx).ExecContext(ctx, query,
		task.ID, task.Description, task.Priority, task.Status,
		task.CompletionPct, task.EstimatedMinutes,
		skills, parts, task.EquipmentID, task.TechnicianID,
		task.CreatedAt, task.DueDate, task.LastUpdated, task.CompletedAt,
	)
	return err
}

func (s *Store) GetTaskByID(ctx context.Context, id string) (*store.Task, error) {
	query := fmt.Sprintf("SELECT %s FROM maintenance_tasks WHERE id = $1", taskColumns)
	return scanTask(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) TaskExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM maintenance_tasks WHERE id = $1)", id,
	).Scan(&exists)
	return exists, err
}

// UpdateTask overwrites all mutable columns of the task row.
func (s *Store) UpdateTask(ctx context.Context, tx store.DBTransaction, task *store.Task) error {
	skills, parts, err := marshalTaskLists(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE maintenance_tasks
		SET description = $2, priority = $3, status = $4, completion_pct = $5,
		    estimated_minutes = $6, required_skills = $7, required_parts = $8,
		    equipment_id = $9, technician_id = $10, due_date = $11,
		    last_updated = $12, completed_at = $13
		WHERE id = $1
	`

	res, err := s.getExecutor(tx).ExecContext(ctx, query,
		task.ID, task.Description, task.Priority, task.Status,
		task.CompletionPct, task.EstimatedMinutes, skills, parts,
		task.EquipmentID, task.TechnicianID, task.DueDate,
		task.LastUpdated, task.CompletedAt,
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM maintenance_tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListTasks returns tasks matching the filter, newest first.
func (s *Store) ListTasks(ctx context.Context, filter store.TaskFilter) ([]store.Task, error) {
	var conds []string
	var args []interface{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.MinPct != nil {
		args = append(args, *filter.MinPct)
		conds = append(conds, fmt.Sprintf("completion_pct >= $%d", len(args)))
	}
	if filter.MaxPct != nil {
		args = append(args, *filter.MaxPct)
		conds = append(conds, fmt.Sprintf("completion_pct <= $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM maintenance_tasks", taskColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return s.queryTasks(ctx, query, args...)
}

func (s *Store) ListTasksByTechnician(ctx context.Context, technicianID int64) ([]store.Task, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM maintenance_tasks WHERE technician_id = $1 ORDER BY created_at DESC",
		taskColumns,
	)
	return s.queryTasks(ctx, query, technicianID)
}

func (s *Store) ListOverdueTasks(ctx context.Context, now time.Time) ([]store.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM maintenance_tasks
		WHERE due_date < $1 AND status <> $2
		ORDER BY due_date ASC
	`, taskColumns)
	return s.queryTasks(ctx, query, now, store.TaskStatusCompleted)
}

func (s *Store) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]store.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM maintenance_tasks
		WHERE due_date >= $1 AND due_date <= $2 AND status <> $3
		ORDER BY due_date ASC
	`, taskColumns)
	return s.queryTasks(ctx, query, from, to, store.TaskStatusCompleted)
}

func (s *Store) CountTasksByStatus(ctx context.Context, status store.TaskStatus) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM maintenance_tasks WHERE status = $1", status,
	).Scan(&count)
	return count, err
}

func (s *Store) CountTasksByTechnician(ctx context.Context, technicianID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM maintenance_tasks WHERE technician_id = $1", technicianID,
	).Scan(&count)
	return count, err
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...interface{}) ([]store.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []store.Task
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row *sql.Row) (*store.Task, error) {
	return scanTaskRow(row)
}

func scanTaskRow(row rowScanner) (*store.Task, error) {
	var task store.Task
	var skills, parts []byte

	err := row.Scan(
		&task.ID, &task.Description, &task.Priority, &task.Status,
		&task.CompletionPct, &task.EstimatedMinutes, &skills, &parts,
		&task.EquipmentID, &task.TechnicianID,
		&task.CreatedAt, &task.DueDate, &task.LastUpdated, &task.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(skills, &task.RequiredSkills); err != nil {
		return nil, fmt.Errorf("failed to decode required_skills for task %s: %w", task.ID, err)
	}
	if err := json.Unmarshal(parts, &task.RequiredParts); err != nil {
		return nil, fmt.Errorf("failed to decode required_parts for task %s: %w", task.ID, err)
	}

	return &task, nil
}

func marshalTaskLists(task *store.Task) ([]byte, []byte, error) {
	skills, err := json.Marshal(emptyIfNil(task.RequiredSkills))
	if err != nil {
		return nil, nil, err
	}
	parts, err := json.Marshal(emptyIfNil(task.RequiredParts))
	if err != nil {
		return nil, nil, err
	}
	return skills, parts, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
