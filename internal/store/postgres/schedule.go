package postgres

import (
	"context"
	"fmt"
	"time"

	"fleetops/internal/store"
)

const scheduleColumns = `id, task_id, technician_id, start_time, end_time, priority, status,
	notes, recurring, recurrence_type, recurrence_end_date, created_at, updated_at`

// CreateSchedule inserts a new schedule row and fills in its generated ID.
// The schedules_no_overlap exclusion constraint is the storage-level
// backstop for the service's conflict check.
func (s *Store) CreateSchedule(ctx context.Context, tx store.DBTransaction, sched *store.Schedule) error {
	query := `
		INSERT INTO schedules
			(task_id, technician_id, start_time, end_time, priority, status,
			 notes, recurring, recurrence_type, recurrence_end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := s.getExecutor(tx).QueryRowContext(ctx, query,
		sched.TaskID, sched.TechnicianID, sched.StartTime, sched.EndTime,
		sched.Priority, sched.Status, sched.Notes, sched.Recurring,
		sched.RecurrenceType, sched.RecurrenceEndDate, sched.CreatedAt, sched.UpdatedAt,
	).Scan(&sched.ID)
	if err != nil {
		return fmt.Errorf("failed to create schedule for technician %d: %w", sched.TechnicianID, err)
	}

	return nil
}

func (s *Store) GetScheduleByID(ctx context.Context, id int64) (*store.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)

	var sched store.Schedule
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sched.ID, &sched.TaskID, &sched.TechnicianID, &sched.StartTime, &sched.EndTime,
		&sched.Priority, &sched.Status, &sched.Notes, &sched.Recurring,
		&sched.RecurrenceType, &sched.RecurrenceEndDate, &sched.CreatedAt, &sched.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &sched, nil
}

// UpdateSchedule overwrites the mutable columns of a schedule row.
func (s *Store) UpdateSchedule(ctx context.Context, tx store.DBTransaction, sched *store.Schedule) error {
	query := `
		UPDATE schedules
		SET task_id = $2, technician_id = $3, start_time = $4, end_time = $5,
		    priority = $6, status = $7, notes = $8, recurring = $9,
		    recurrence_type = $10, recurrence_end_date = $11, updated_at = $12
		WHERE id = $1
	`

	res, err := s.getExecutor(tx).ExecContext(ctx, query,
		sched.ID, sched.TaskID, sched.TechnicianID, sched.StartTime, sched.EndTime,
		sched.Priority, sched.Status, sched.Notes, sched.Recurring,
		sched.RecurrenceType, sched.RecurrenceEndDate, sched.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireRow(res)
}

func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListSchedulesByTechnician(ctx context.Context, technicianID int64) ([]store.Schedule, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM schedules WHERE technician_id = $1 ORDER BY start_time ASC",
		scheduleColumns,
	)
	return s.querySchedules(ctx, query, technicianID)
}

func (s *Store) ListSchedulesByTask(ctx context.Context, taskID string) ([]store.Schedule, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM schedules WHERE task_id = $1 ORDER BY start_time ASC",
		scheduleColumns,
	)
	return s.querySchedules(ctx, query, taskID)
}

func (s *Store) ListSchedulesBetween(ctx context.Context, start, end time.Time) ([]store.Schedule, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM schedules
		WHERE start_time >= $1 AND start_time <= $2
		ORDER BY start_time ASC
	`, scheduleColumns)
	return s.querySchedules(ctx, query, start, end)
}

// FindConflictingSchedules returns the technician's bookings overlapping the
// half-open interval [start,end). Rows merely touching a boundary are not
// conflicts. excludeID skips the row being updated; pass 0 when creating.
func (s *Store) FindConflictingSchedules(ctx context.Context, technicianID int64, start, end time.Time, excludeID int64) ([]store.Schedule, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM schedules
		WHERE technician_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND id <> $4
		ORDER BY start_time ASC
	`, scheduleColumns)
	return s.querySchedules(ctx, query, technicianID, start, end, excludeID)
}

// DeleteSchedulesEndedBefore purges bookings that ended before the cutoff.
func (s *Store) DeleteSchedulesEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE end_time < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) querySchedules(ctx context.Context, query string, args ...interface{}) ([]store.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []store.Schedule
	for rows.Next() {
		var sched store.Schedule
		if err := rows.Scan(
			&sched.ID, &sched.TaskID, &sched.TechnicianID, &sched.StartTime, &sched.EndTime,
			&sched.Priority, &sched.Status, &sched.Notes, &sched.Recurring,
			&sched.RecurrenceType, &sched.RecurrenceEndDate, &sched.CreatedAt, &sched.UpdatedAt,
		); err != nil {
			return nil, err
		}
		schedules = append(schedules, sched)
	}

	return schedules, rows.Err()
}
