package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx.
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// TaskFilter narrows task list queries. Zero values mean "no filter".
type TaskFilter struct {
	Statuses []TaskStatus
	Priority TaskPriority
	MinPct   *float64
	MaxPct   *float64
}

// TaskStore handles persistence of maintenance tasks.
type TaskStore interface {
	// CreateTask inserts a new task row.
	CreateTask(ctx context.Context, tx DBTransaction, task *Task) error

	// GetTaskByID returns a task by its caller-supplied ID.
	GetTaskByID(ctx context.Context, id string) (*Task, error)

	// TaskExists reports whether a task with the given ID exists.
	TaskExists(ctx context.Context, id string) (bool, error)

	// UpdateTask overwrites all mutable columns of the task row.
	UpdateTask(ctx context.Context, tx DBTransaction, task *Task) error

	// DeleteTask removes the task row. sql.ErrNoRows if absent.
	DeleteTask(ctx context.Context, id string) error

	// ListTasks returns tasks matching the filter, newest first.
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)

	// ListTasksByTechnician returns tasks assigned to the given technician.
	ListTasksByTechnician(ctx context.Context, technicianID int64) ([]Task, error)

	// ListOverdueTasks returns tasks due before now and not COMPLETED.
	ListOverdueTasks(ctx context.Context, now time.Time) ([]Task, error)

	// ListTasksDueBetween returns non-completed tasks due within [from,to].
	ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]Task, error)

	// CountTasksByStatus returns the number of tasks with the given status.
	CountTasksByStatus(ctx context.Context, status TaskStatus) (int64, error)

	// CountTasksByTechnician returns the number of tasks assigned to a technician.
	CountTasksByTechnician(ctx context.Context, technicianID int64) (int64, error)
}

// AssignmentStore handles persistence of assignment offers.
type AssignmentStore interface {
	// CreateAssignment inserts a new assignment row and fills in its generated ID.
	CreateAssignment(ctx context.Context, tx DBTransaction, a *Assignment) error

	// GetAssignmentByID returns an assignment by its ID.
	GetAssignmentByID(ctx context.Context, id int64) (*Assignment, error)

	// UpdateAssignment overwrites the mutable columns of an assignment row.
	UpdateAssignment(ctx context.Context, tx DBTransaction, a *Assignment) error

	// ListAssignmentsByTechnician returns a technician's assignments,
	// optionally narrowed to the given statuses.
	ListAssignmentsByTechnician(ctx context.Context, technicianID int64, statuses []AssignmentStatus) ([]Assignment, error)

	// ListAssignmentsByTask returns every assignment ever created for a task.
	ListAssignmentsByTask(ctx context.Context, taskID string) ([]Assignment, error)

	// ListAssignmentsBetween returns assignments whose assigned_at falls in [start,end].
	ListAssignmentsBetween(ctx context.Context, start, end time.Time) ([]Assignment, error)

	// CountActiveAssignments returns the number of ACCEPTED or IN_PROGRESS
	// assignments held by a technician.
	CountActiveAssignments(ctx context.Context, technicianID int64) (int, error)

	// ListStalePendingAssignments returns assignments stuck in
	// PENDING_ACCEPTANCE since before the cutoff.
	ListStalePendingAssignments(ctx context.Context, cutoff time.Time) ([]Assignment, error)
}

// ScheduleStore handles persistence of calendar bookings.
type ScheduleStore interface {
	// CreateSchedule inserts a new schedule row and fills in its generated ID.
	CreateSchedule(ctx context.Context, tx DBTransaction, s *Schedule) error

	// GetScheduleByID returns a schedule by its ID.
	GetScheduleByID(ctx context.Context, id int64) (*Schedule, error)

	// UpdateSchedule overwrites the mutable columns of a schedule row.
	UpdateSchedule(ctx context.Context, tx DBTransaction, s *Schedule) error

	// DeleteSchedule removes a schedule row. sql.ErrNoRows if absent.
	DeleteSchedule(ctx context.Context, id int64) error

	// ListSchedulesByTechnician returns a technician's bookings ordered by start time.
	ListSchedulesByTechnician(ctx context.Context, technicianID int64) ([]Schedule, error)

	// ListSchedulesByTask returns the bookings referencing a task.
	ListSchedulesByTask(ctx context.Context, taskID string) ([]Schedule, error)

	// ListSchedulesBetween returns bookings starting within [start,end].
	ListSchedulesBetween(ctx context.Context, start, end time.Time) ([]Schedule, error)

	// FindConflictingSchedules returns the technician's bookings whose
	// half-open interval overlaps [start,end). excludeID skips the row
	// being updated; pass 0 when creating.
	FindConflictingSchedules(ctx context.Context, technicianID int64, start, end time.Time, excludeID int64) ([]Schedule, error)

	// DeleteSchedulesEndedBefore purges bookings that ended before the cutoff
	// and returns how many rows were removed.
	DeleteSchedulesEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StaffStore handles read-side staff lookups for the assignment logic.
type StaffStore interface {
	// GetStaffByID returns a staff member by ID.
	GetStaffByID(ctx context.Context, id int64) (*Staff, error)

	// ListAvailableTechnicians returns active technicians flagged available,
	// ordered by staff ID.
	ListAvailableTechnicians(ctx context.Context) ([]Staff, error)
}

// EquipmentStore handles read-side equipment lookups.
type EquipmentStore interface {
	// GetEquipmentByID returns an equipment record by ID.
	GetEquipmentByID(ctx context.Context, id int64) (*Equipment, error)
}
