package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fleetops/internal/store"
)

// TaskService manages the maintenance task lifecycle: status and completion
// updates, technician and equipment linkage, and skill/part bookkeeping.
type TaskService struct {
	store Store
	log   *slog.Logger
}

// NewTaskService creates a task service.
func NewTaskService(s Store, log *slog.Logger) *TaskService {
	return &TaskService{store: s, log: log}
}

// TaskDetail is a task with its related records resolved for convenience.
type TaskDetail struct {
	Task       store.Task
	Technician *store.Staff
	Equipment  *store.Equipment
}

// CreateTask creates a task in PLANNED state with zero completion.
// The ID is caller-supplied and must be unused.
func (s *TaskService) CreateTask(ctx context.Context, id, description string, priority store.TaskPriority, estimated time.Duration) (*store.Task, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidf("task id is required")
	}
	if !store.ValidTaskPriority(priority) {
		return nil, invalidf("invalid task priority: %s", priority)
	}

	exists, err := s.store.TaskExists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check task %s: %w", id, err)
	}
	if exists {
		return nil, rulef("task %s already exists", id)
	}

	now := time.Now().UTC()
	task := &store.Task{
		ID:               id,
		Description:      description,
		Priority:         priority,
		Status:           store.TaskStatusPlanned,
		CompletionPct:    0,
		EstimatedMinutes: int64(estimated.Minutes()),
		RequiredSkills:   []string{},
		RequiredParts:    []string{},
		CreatedAt:        now,
		LastUpdated:      now,
	}

	if err := s.store.CreateTask(ctx, nil, task); err != nil {
		return nil, fmt.Errorf("failed to create task %s: %w", id, err)
	}

	return task, nil
}

// GetTask returns a task by ID.
func (s *TaskService) GetTask(ctx context.Context, id string) (*store.Task, error) {
	return s.getTask(ctx, id)
}

// ListTasks returns tasks matching the filter.
func (s *TaskService) ListTasks(ctx context.Context, filter store.TaskFilter) ([]store.Task, error) {
	for _, status := range filter.Statuses {
		if !store.ValidTaskStatus(status) {
			return nil, invalidf("invalid task status: %s", status)
		}
	}
	if filter.Priority != "" && !store.ValidTaskPriority(filter.Priority) {
		return nil, invalidf("invalid task priority: %s", filter.Priority)
	}
	return s.store.ListTasks(ctx, filter)
}

// UpdateTask applies the non-empty fields to the task's description,
// priority, and estimated duration.
func (s *TaskService) UpdateTask(ctx context.Context, id, description string, priority store.TaskPriority, estimated time.Duration) (*store.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(description) != "" {
		task.Description = description
	}
	if priority != "" {
		if !store.ValidTaskPriority(priority) {
			return nil, invalidf("invalid task priority: %s", priority)
		}
		task.Priority = priority
	}
	if estimated > 0 {
		task.EstimatedMinutes = int64(estimated.Minutes())
	}

	return s.saveTask(ctx, task)
}

// UpdateStatus sets the task status. Moving to COMPLETED stamps the
// completion timestamp and forces the percentage to 100.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, status store.TaskStatus) (*store.Task, error) {
	if !store.ValidTaskStatus(status) {
		return nil, invalidf("invalid task status: %s", status)
	}

	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Status = status
	if status == store.TaskStatusCompleted {
		now := time.Now().UTC()
		task.CompletedAt = &now
		if task.CompletionPct < 100 {
			task.CompletionPct = 100
		}
	}

	return s.saveTask(ctx, task)
}

// UpdateCompletion sets the completion percentage. Reaching exactly 100
// flips the status to COMPLETED and stamps the completion timestamp; this is
// the second path to completion and stays consistent with UpdateStatus.
func (s *TaskService) UpdateCompletion(ctx context.Context, id string, pct float64) (*store.Task, error) {
	if pct < 0 || pct > 100 {
		return nil, invalidf("completion percentage must be between 0 and 100, got %v", pct)
	}

	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task.CompletionPct = pct
	if pct == 100 && task.Status != store.TaskStatusCompleted {
		now := time.Now().UTC()
		task.Status = store.TaskStatusCompleted
		task.CompletedAt = &now
	}

	return s.saveTask(ctx, task)
}

// AssignTechnician links a technician to the task.
func (s *TaskService) AssignTechnician(ctx context.Context, taskID string, technicianID int64) (*store.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.getStaff(ctx, technicianID); err != nil {
		return nil, err
	}

	task.TechnicianID = &technicianID
	return s.saveTask(ctx, task)
}

// UnassignTechnician clears the technician link and resets the task to
// PLANNED.
func (s *TaskService) UnassignTechnician(ctx context.Context, taskID string) (*store.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.TechnicianID = nil
	task.Status = store.TaskStatusPlanned
	return s.saveTask(ctx, task)
}

// AssignEquipment links a piece of equipment to the task. The reference is
// weak: only existence is checked.
func (s *TaskService) AssignEquipment(ctx context.Context, taskID string, equipmentID int64) (*store.Task, error) {
	if equipmentID <= 0 {
		return nil, invalidf("invalid equipment id: %d", equipmentID)
	}

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetEquipmentByID(ctx, equipmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("equipment", strconv.FormatInt(equipmentID, 10))
		}
		return nil, fmt.Errorf("failed to load equipment %d: %w", equipmentID, err)
	}

	task.EquipmentID = &equipmentID
	return s.saveTask(ctx, task)
}

// AddRequiredSkill adds a skill to the task's list. Adding a skill that is
// already present is a no-op; comparison is exact after trimming.
func (s *TaskService) AddRequiredSkill(ctx context.Context, taskID, skill string) (*store.Task, error) {
	return s.addListEntry(ctx, taskID, skill, "skill",
		func(t *store.Task) *[]string { return &t.RequiredSkills })
}

// RemoveRequiredSkill removes a skill from the task's list. Removing an
// absent skill is not an error.
func (s *TaskService) RemoveRequiredSkill(ctx context.Context, taskID, skill string) (*store.Task, error) {
	return s.removeListEntry(ctx, taskID, skill,
		func(t *store.Task) *[]string { return &t.RequiredSkills })
}

// AddRequiredPart adds a part to the task's list, idempotently.
func (s *TaskService) AddRequiredPart(ctx context.Context, taskID, part string) (*store.Task, error) {
	return s.addListEntry(ctx, taskID, part, "part",
		func(t *store.Task) *[]string { return &t.RequiredParts })
}

// RemoveRequiredPart removes a part from the task's list, tolerantly.
func (s *TaskService) RemoveRequiredPart(ctx context.Context, taskID, part string) (*store.Task, error) {
	return s.removeListEntry(ctx, taskID, part,
		func(t *store.Task) *[]string { return &t.RequiredParts })
}

// SetDueDate sets or clears the task's due date.
func (s *TaskService) SetDueDate(ctx context.Context, taskID string, due *time.Time) (*store.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.DueDate = due
	return s.saveTask(ctx, task)
}

// TechnicianTasks returns the tasks assigned to a technician with related
// staff and equipment resolved. The staff member must hold the TECHNICIAN
// role.
func (s *TaskService) TechnicianTasks(ctx context.Context, technicianID int64) ([]TaskDetail, error) {
	technician, err := s.getStaff(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	if technician.Role != store.RoleTechnician {
		return nil, rulef("staff member %d is not a technician", technicianID)
	}

	tasks, err := s.store.ListTasksByTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	details := make([]TaskDetail, 0, len(tasks))
	for _, task := range tasks {
		detail := TaskDetail{Task: task, Technician: technician}
		if task.EquipmentID != nil {
			eq, err := s.store.GetEquipmentByID(ctx, *task.EquipmentID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("failed to load equipment %d: %w", *task.EquipmentID, err)
			}
			detail.Equipment = eq
		}
		details = append(details, detail)
	}

	return details, nil
}

// OverdueTasks returns tasks whose due date has passed and which are not
// COMPLETED. Overdue is computed at query time, never persisted.
func (s *TaskService) OverdueTasks(ctx context.Context) ([]store.Task, error) {
	return s.store.ListOverdueTasks(ctx, time.Now().UTC())
}

// TasksDueWithin returns non-completed tasks due within the given window
// from now.
func (s *TaskService) TasksDueWithin(ctx context.Context, window time.Duration) ([]store.Task, error) {
	if window <= 0 {
		return nil, invalidf("window must be positive")
	}
	now := time.Now().UTC()
	return s.store.ListTasksDueBetween(ctx, now, now.Add(window))
}

// CountByStatus returns how many tasks hold the given status.
func (s *TaskService) CountByStatus(ctx context.Context, status store.TaskStatus) (int64, error) {
	if !store.ValidTaskStatus(status) {
		return 0, invalidf("invalid task status: %s", status)
	}
	return s.store.CountTasksByStatus(ctx, status)
}

// CountByTechnician returns how many tasks are assigned to a technician.
func (s *TaskService) CountByTechnician(ctx context.Context, technicianID int64) (int64, error) {
	return s.store.CountTasksByTechnician(ctx, technicianID)
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("task", id)
		}
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

// BulkResult reports the outcome of one item in a bulk operation.
type BulkResult struct {
	TaskID string `json:"task_id"`
	Err    string `json:"error,omitempty"`
}

// BulkAssignTechnician assigns a technician to many tasks. Individual
// failures are recorded and logged, not propagated: the batch is
// partial-failure tolerant, never all-or-nothing.
func (s *TaskService) BulkAssignTechnician(ctx context.Context, taskIDs []string, technicianID int64) []BulkResult {
	results := make([]BulkResult, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		result := BulkResult{TaskID: taskID}
		if _, err := s.AssignTechnician(ctx, taskID, technicianID); err != nil {
			result.Err = err.Error()
			s.log.WarnContext(ctx, "bulk technician assignment failed",
				"task_id", taskID, "technician_id", technicianID, "error", err)
		}
		results = append(results, result)
	}
	return results
}

// BulkUpdateStatus updates the status of many tasks with the same
// per-item failure tolerance as BulkAssignTechnician.
func (s *TaskService) BulkUpdateStatus(ctx context.Context, taskIDs []string, status store.TaskStatus) []BulkResult {
	results := make([]BulkResult, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		result := BulkResult{TaskID: taskID}
		if _, err := s.UpdateStatus(ctx, taskID, status); err != nil {
			result.Err = err.Error()
			s.log.WarnContext(ctx, "bulk status update failed",
				"task_id", taskID, "status", status, "error", err)
		}
		results = append(results, result)
	}
	return results
}

func (s *TaskService) addListEntry(ctx context.Context, taskID, entry, kind string, list func(*store.Task) *[]string) (*store.Task, error) {
	trimmed := strings.TrimSpace(entry)
	if trimmed == "" {
		return nil, invalidf("%s cannot be empty", kind)
	}

	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	target := list(task)
	for _, existing := range *target {
		if existing == trimmed {
			return task, nil
		}
	}

	*target = append(*target, trimmed)
	return s.saveTask(ctx, task)
}

func (s *TaskService) removeListEntry(ctx context.Context, taskID, entry string, list func(*store.Task) *[]string) (*store.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(entry)
	target := list(task)
	for i, existing := range *target {
		if existing == trimmed {
			*target = append((*target)[:i], (*target)[i+1:]...)
			return s.saveTask(ctx, task)
		}
	}

	return task, nil
}

func (s *TaskService) saveTask(ctx context.Context, task *store.Task) (*store.Task, error) {
	task.LastUpdated = time.Now().UTC()
	if err := s.store.UpdateTask(ctx, nil, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("task", task.ID)
		}
		return nil, fmt.Errorf("failed to update task %s: %w", task.ID, err)
	}
	return task, nil
}

func (s *TaskService) getTask(ctx context.Context, taskID string) (*store.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("task", taskID)
		}
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	return task, nil
}

func (s *TaskService) getStaff(ctx context.Context, staffID int64) (*store.Staff, error) {
	member, err := s.store.GetStaffByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("technician", strconv.FormatInt(staffID, 10))
		}
		return nil, fmt.Errorf("failed to load staff %d: %w", staffID, err)
	}
	return member, nil
}
