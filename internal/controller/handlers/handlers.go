// Package handlers contains HTTP handlers for the fleetops API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fleetops/internal/service"
	"fleetops/internal/store"
	"fleetops/pkg/api"
)

// TaskService is the slice of the task service the handlers need.
type TaskService interface {
	CreateTask(ctx context.Context, id, description string, priority store.TaskPriority, estimated time.Duration) (*store.Task, error)
	GetTask(ctx context.Context, id string) (*store.Task, error)
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]store.Task, error)
	UpdateTask(ctx context.Context, id, description string, priority store.TaskPriority, estimated time.Duration) (*store.Task, error)
	UpdateStatus(ctx context.Context, id string, status store.TaskStatus) (*store.Task, error)
	UpdateCompletion(ctx context.Context, id string, pct float64) (*store.Task, error)
	AssignTechnician(ctx context.Context, taskID string, technicianID int64) (*store.Task, error)
	UnassignTechnician(ctx context.Context, taskID string) (*store.Task, error)
	AssignEquipment(ctx context.Context, taskID string, equipmentID int64) (*store.Task, error)
	AddRequiredSkill(ctx context.Context, taskID, skill string) (*store.Task, error)
	RemoveRequiredSkill(ctx context.Context, taskID, skill string) (*store.Task, error)
	AddRequiredPart(ctx context.Context, taskID, part string) (*store.Task, error)
	RemoveRequiredPart(ctx context.Context, taskID, part string) (*store.Task, error)
	SetDueDate(ctx context.Context, taskID string, due *time.Time) (*store.Task, error)
	TechnicianTasks(ctx context.Context, technicianID int64) ([]service.TaskDetail, error)
	OverdueTasks(ctx context.Context) ([]store.Task, error)
	TasksDueWithin(ctx context.Context, window time.Duration) ([]store.Task, error)
	DeleteTask(ctx context.Context, id string) error
	BulkAssignTechnician(ctx context.Context, taskIDs []string, technicianID int64) []service.BulkResult
	BulkUpdateStatus(ctx context.Context, taskIDs []string, status store.TaskStatus) []service.BulkResult
}

// AssignmentService is the slice of the assignment service the handlers need.
type AssignmentService interface {
	AssignAutomatically(ctx context.Context, taskID string) (*store.Assignment, error)
	AssignManually(ctx context.Context, taskID string, technicianID int64) (*store.Assignment, error)
	Respond(ctx context.Context, assignmentID int64, accept bool, reason string) (*store.Assignment, error)
	Reassign(ctx context.Context, assignmentID, newTechnicianID int64) (*store.Assignment, error)
	Start(ctx context.Context, assignmentID int64) (*store.Assignment, error)
	Complete(ctx context.Context, assignmentID int64) (*store.Assignment, error)
	GetAssignment(ctx context.Context, assignmentID int64) (*store.Assignment, error)
	TechnicianAssignments(ctx context.Context, technicianID int64, status *store.AssignmentStatus) ([]store.Assignment, error)
	TaskAssignments(ctx context.Context, taskID string) ([]store.Assignment, error)
	PendingAssignments(ctx context.Context, technicianID int64) ([]store.Assignment, error)
	ActiveAssignments(ctx context.Context, technicianID int64) ([]store.Assignment, error)
	Statistics(ctx context.Context, start, end time.Time) (service.Statistics, error)
}

// ScheduleService is the slice of the schedule service the handlers need.
type ScheduleService interface {
	CreateSchedule(ctx context.Context, in service.ScheduleInput) (*store.Schedule, error)
	UpdateSchedule(ctx context.Context, id int64, in service.ScheduleInput) (*store.Schedule, error)
	GetSchedule(ctx context.Context, id int64) (*store.Schedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
	TechnicianSchedules(ctx context.Context, technicianID int64) ([]store.Schedule, error)
	TaskSchedules(ctx context.Context, taskID string) ([]store.Schedule, error)
	SchedulesBetween(ctx context.Context, start, end time.Time) ([]store.Schedule, error)
}

// Pinger checks database connectivity for health probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	tasks       TaskService
	assignments AssignmentService
	schedules   ScheduleService
	db          Pinger
}

// New creates a new Handlers instance with the given service dependencies.
func New(tasks TaskService, assignments AssignmentService, schedules ScheduleService, db Pinger) *Handlers {
	return &Handlers{
		tasks:       tasks,
		assignments: assignments,
		schedules:   schedules,
		db:          db,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// serviceError maps the error taxonomy onto HTTP status codes: NotFound to
// 404, ValidationError to 400, RuleError to 409, anything else to 500.
func (h *Handlers) serviceError(w http.ResponseWriter, err error) {
	switch {
	case service.IsNotFound(err):
		h.httpError(w, err.Error(), http.StatusNotFound)
	case service.IsValidation(err):
		h.httpError(w, err.Error(), http.StatusBadRequest)
	case service.IsRuleViolation(err):
		h.httpError(w, err.Error(), http.StatusConflict)
	default:
		h.httpError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func taskResponse(t *store.Task) api.TaskResponse {
	return api.TaskResponse{
		TaskID:           t.ID,
		Description:      t.Description,
		Priority:         string(t.Priority),
		Status:           string(t.Status),
		CompletionPct:    t.CompletionPct,
		EstimatedMinutes: t.EstimatedMinutes,
		RequiredSkills:   t.RequiredSkills,
		RequiredParts:    t.RequiredParts,
		EquipmentID:      t.EquipmentID,
		TechnicianID:     t.TechnicianID,
		CreatedAt:        t.CreatedAt,
		DueDate:          t.DueDate,
		LastUpdated:      t.LastUpdated,
		CompletedAt:      t.CompletedAt,
	}
}

func taskResponses(tasks []store.Task) []api.TaskResponse {
	out := make([]api.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskResponse(&tasks[i]))
	}
	return out
}

func assignmentResponse(a *store.Assignment) api.AssignmentResponse {
	return api.AssignmentResponse{
		ID:              a.ID,
		TaskID:          a.TaskID,
		TechnicianID:    a.TechnicianID,
		Status:          string(a.Status),
		Method:          string(a.Method),
		RejectionReason: a.RejectionReason,
		AssignedAt:      a.AssignedAt,
		RespondedAt:     a.RespondedAt,
		StartedAt:       a.StartedAt,
		CompletedAt:     a.CompletedAt,
	}
}

func assignmentResponses(assignments []store.Assignment) []api.AssignmentResponse {
	out := make([]api.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		out = append(out, assignmentResponse(&assignments[i]))
	}
	return out
}

func scheduleResponse(s *store.Schedule) api.ScheduleResponse {
	resp := api.ScheduleResponse{
		ID:                s.ID,
		TaskID:            s.TaskID,
		TechnicianID:      s.TechnicianID,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		Priority:          string(s.Priority),
		Status:            string(s.Status),
		Notes:             s.Notes,
		Recurring:         s.Recurring,
		RecurrenceEndDate: s.RecurrenceEndDate,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.RecurrenceType != nil {
		rt := string(*s.RecurrenceType)
		resp.RecurrenceType = &rt
	}
	return resp
}

func scheduleResponses(schedules []store.Schedule) []api.ScheduleResponse {
	out := make([]api.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, scheduleResponse(&schedules[i]))
	}
	return out
}

func bulkResponse(results []service.BulkResult) api.BulkResponse {
	resp := api.BulkResponse{Results: make([]api.BulkResultItem, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, api.BulkResultItem{TaskID: r.TaskID, Error: r.Err})
	}
	return resp
}
