package service

import (
	"context"
	"database/sql"
	"time"

	"fleetops/internal/store"
)

// fakeStore is an in-memory Store used by the service tests.
type fakeStore struct {
	tasks       map[string]*store.Task
	assignments map[int64]*store.Assignment
	schedules   map[int64]*store.Schedule
	staff       map[int64]*store.Staff
	equipment   map[int64]*store.Equipment

	nextAssignmentID int64
	nextScheduleID   int64

	commits   int
	rollbacks int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:       make(map[string]*store.Task),
		assignments: make(map[int64]*store.Assignment),
		schedules:   make(map[int64]*store.Schedule),
		staff:       make(map[int64]*store.Staff),
		equipment:   make(map[int64]*store.Equipment),
	}
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.s.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.s.rollbacks++
	return nil
}

func (f *fakeStore) BeginTx(ctx context.Context) (store.Tx, error) {
	return &fakeTx{s: f}, nil
}

func (f *fakeStore) CreateTask(ctx context.Context, tx store.DBTransaction, task *store.Task) error {
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeStore) GetTaskByID(ctx context.Context, id string) (*store.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (f *fakeStore) TaskExists(ctx context.Context, id string) (bool, error) {
	_, ok := f.tasks[id]
	return ok, nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, tx store.DBTransaction, task *store.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context, filter store.TaskFilter) ([]store.Task, error) {
	var out []store.Task
	for _, task := range f.tasks {
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if task.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.MinPct != nil && task.CompletionPct < *filter.MinPct {
			continue
		}
		if filter.MaxPct != nil && task.CompletionPct > *filter.MaxPct {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeStore) ListTasksByTechnician(ctx context.Context, technicianID int64) ([]store.Task, error) {
	var out []store.Task
	for _, task := range f.tasks {
		if task.TechnicianID != nil && *task.TechnicianID == technicianID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeStore) ListOverdueTasks(ctx context.Context, now time.Time) ([]store.Task, error) {
	var out []store.Task
	for _, task := range f.tasks {
		if task.DueDate != nil && task.DueDate.Before(now) && task.Status != store.TaskStatusCompleted {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]store.Task, error) {
	var out []store.Task
	for _, task := range f.tasks {
		if task.DueDate == nil || task.Status == store.TaskStatusCompleted {
			continue
		}
		if !task.DueDate.Before(from) && !task.DueDate.After(to) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeStore) CountTasksByStatus(ctx context.Context, status store.TaskStatus) (int64, error) {
	var count int64
	for _, task := range f.tasks {
		if task.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountTasksByTechnician(ctx context.Context, technicianID int64) (int64, error) {
	var count int64
	for _, task := range f.tasks {
		if task.TechnicianID != nil && *task.TechnicianID == technicianID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateAssignment(ctx context.Context, tx store.DBTransaction, a *store.Assignment) error {
	f.nextAssignmentID++
	a.ID = f.nextAssignmentID
	copied := *a
	f.assignments[a.ID] = &copied
	return nil
}

func (f *fakeStore) GetAssignmentByID(ctx context.Context, id int64) (*store.Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (f *fakeStore) UpdateAssignment(ctx context.Context, tx store.DBTransaction, a *store.Assignment) error {
	if _, ok := f.assignments[a.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *a
	f.assignments[a.ID] = &copied
	return nil
}

func (f *fakeStore) ListAssignmentsByTechnician(ctx context.Context, technicianID int64, statuses []store.AssignmentStatus) ([]store.Assignment, error) {
	var out []store.Assignment
	for _, a := range f.assignments {
		if a.TechnicianID != technicianID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, status := range statuses {
				if a.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) ListAssignmentsByTask(ctx context.Context, taskID string) ([]store.Assignment, error) {
	var out []store.Assignment
	for _, a := range f.assignments {
		if a.TaskID == taskID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAssignmentsBetween(ctx context.Context, start, end time.Time) ([]store.Assignment, error) {
	var out []store.Assignment
	for _, a := range f.assignments {
		if !a.AssignedAt.Before(start) && !a.AssignedAt.After(end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) CountActiveAssignments(ctx context.Context, technicianID int64) (int, error) {
	count := 0
	for _, a := range f.assignments {
		if a.TechnicianID != technicianID {
			continue
		}
		if a.Status == store.AssignmentAccepted || a.Status == store.AssignmentInProgress {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListStalePendingAssignments(ctx context.Context, cutoff time.Time) ([]store.Assignment, error) {
	var out []store.Assignment
	for _, a := range f.assignments {
		if a.Status == store.AssignmentPending && a.AssignedAt.Before(cutoff) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSchedule(ctx context.Context, tx store.DBTransaction, sched *store.Schedule) error {
	f.nextScheduleID++
	sched.ID = f.nextScheduleID
	copied := *sched
	f.schedules[sched.ID] = &copied
	return nil
}

func (f *fakeStore) GetScheduleByID(ctx context.Context, id int64) (*store.Schedule, error) {
	sched, ok := f.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *sched
	return &copied, nil
}

func (f *fakeStore) UpdateSchedule(ctx context.Context, tx store.DBTransaction, sched *store.Schedule) error {
	if _, ok := f.schedules[sched.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *sched
	f.schedules[sched.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteSchedule(ctx context.Context, id int64) error {
	if _, ok := f.schedules[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.schedules, id)
	return nil
}

func (f *fakeStore) ListSchedulesByTechnician(ctx context.Context, technicianID int64) ([]store.Schedule, error) {
	var out []store.Schedule
	for _, sched := range f.schedules {
		if sched.TechnicianID == technicianID {
			out = append(out, *sched)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSchedulesByTask(ctx context.Context, taskID string) ([]store.Schedule, error) {
	var out []store.Schedule
	for _, sched := range f.schedules {
		if sched.TaskID == taskID {
			out = append(out, *sched)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSchedulesBetween(ctx context.Context, start, end time.Time) ([]store.Schedule, error) {
	var out []store.Schedule
	for _, sched := range f.schedules {
		if !sched.StartTime.Before(start) && !sched.StartTime.After(end) {
			out = append(out, *sched)
		}
	}
	return out, nil
}

func (f *fakeStore) FindConflictingSchedules(ctx context.Context, technicianID int64, start, end time.Time, excludeID int64) ([]store.Schedule, error) {
	var out []store.Schedule
	for _, sched := range f.schedules {
		if sched.TechnicianID != technicianID || sched.ID == excludeID {
			continue
		}
		if sched.StartTime.Before(end) && sched.EndTime.After(start) {
			out = append(out, *sched)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteSchedulesEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, sched := range f.schedules {
		if sched.EndTime.Before(cutoff) {
			delete(f.schedules, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetStaffByID(ctx context.Context, id int64) (*store.Staff, error) {
	member, ok := f.staff[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *member
	return &copied, nil
}

func (f *fakeStore) ListAvailableTechnicians(ctx context.Context) ([]store.Staff, error) {
	var ids []int64
	for id, member := range f.staff {
		if member.Role == store.RoleTechnician && member.Active && member.Available {
			ids = append(ids, id)
		}
	}
	// lowest ID first, matching the query ordering
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	out := make([]store.Staff, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.staff[id])
	}
	return out, nil
}

func (f *fakeStore) GetEquipmentByID(ctx context.Context, id int64) (*store.Equipment, error) {
	eq, ok := f.equipment[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *eq
	return &copied, nil
}

// Seeding helpers.

func (f *fakeStore) seedTask(id string, status store.TaskStatus) *store.Task {
	now := time.Now().UTC()
	task := &store.Task{
		ID:             id,
		Description:    "seeded task",
		Priority:       store.PriorityMedium,
		Status:         status,
		RequiredSkills: []string{},
		RequiredParts:  []string{},
		CreatedAt:      now,
		LastUpdated:    now,
	}
	f.tasks[id] = task
	return task
}

func (f *fakeStore) seedTechnician(id int64) *store.Staff {
	member := &store.Staff{
		ID:        id,
		Name:      "Tech",
		Email:     "tech@fleet.example",
		Role:      store.RoleTechnician,
		Active:    true,
		Available: true,
		CreatedAt: time.Now().UTC(),
	}
	f.staff[id] = member
	return member
}

func (f *fakeStore) seedAssignment(taskID string, technicianID int64, status store.AssignmentStatus) *store.Assignment {
	f.nextAssignmentID++
	a := &store.Assignment{
		ID:           f.nextAssignmentID,
		TaskID:       taskID,
		TechnicianID: technicianID,
		Status:       status,
		Method:       store.MethodManual,
		AssignedAt:   time.Now().UTC(),
	}
	f.assignments[a.ID] = a
	return a
}

func (f *fakeStore) seedSchedule(technicianID int64, start, end time.Time) *store.Schedule {
	f.nextScheduleID++
	now := time.Now().UTC()
	sched := &store.Schedule{
		ID:           f.nextScheduleID,
		TaskID:       "TASK-SEED",
		TechnicianID: technicianID,
		StartTime:    start,
		EndTime:      end,
		Priority:     store.PriorityMedium,
		Status:       store.ScheduleScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.schedules[sched.ID] = sched
	return sched
}
