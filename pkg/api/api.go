// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import "time"

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateTaskRequest is the request body for creating a maintenance task.
type CreateTaskRequest struct {
	TaskID           string `json:"task_id"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	EstimatedMinutes int64  `json:"estimated_minutes,omitempty"`
}

// UpdateTaskRequest is the request body for updating task fields.
type UpdateTaskRequest struct {
	Description      string `json:"description,omitempty"`
	Priority         string `json:"priority,omitempty"`
	EstimatedMinutes int64  `json:"estimated_minutes,omitempty"`
}

// UpdateTaskStatusRequest sets a task's lifecycle status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// UpdateCompletionRequest sets a task's completion percentage.
type UpdateCompletionRequest struct {
	CompletionPct float64 `json:"completion_pct"`
}

// AssignTechnicianRequest links a technician to a task.
type AssignTechnicianRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// AssignEquipmentRequest links equipment to a task.
type AssignEquipmentRequest struct {
	EquipmentID int64 `json:"equipment_id"`
}

// ListEntryRequest adds a required skill or part to a task.
type ListEntryRequest struct {
	Value string `json:"value"`
}

// SetDueDateRequest sets or clears a task's due date.
type SetDueDateRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// BulkAssignRequest assigns one technician to many tasks.
type BulkAssignRequest struct {
	TaskIDs      []string `json:"task_ids"`
	TechnicianID int64    `json:"technician_id"`
}

// BulkStatusRequest updates the status of many tasks.
type BulkStatusRequest struct {
	TaskIDs []string `json:"task_ids"`
	Status  string   `json:"status"`
}

// BulkResultItem reports the outcome of one item in a bulk operation.
type BulkResultItem struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error,omitempty"`
}

// BulkResponse is the response body for bulk operations.
type BulkResponse struct {
	Results []BulkResultItem `json:"results"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	TaskID           string     `json:"task_id"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	CompletionPct    float64    `json:"completion_pct"`
	EstimatedMinutes int64      `json:"estimated_minutes"`
	RequiredSkills   []string   `json:"required_skills"`
	RequiredParts    []string   `json:"required_parts"`
	EquipmentID      *int64     `json:"equipment_id,omitempty"`
	TechnicianID     *int64     `json:"technician_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	LastUpdated      time.Time  `json:"last_updated"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// AssignManualRequest is the request body for manual assignment.
type AssignManualRequest struct {
	TaskID       string `json:"task_id"`
	TechnicianID int64  `json:"technician_id"`
}

// AssignAutoRequest is the request body for automatic assignment.
type AssignAutoRequest struct {
	TaskID string `json:"task_id"`
}

// RespondRequest carries a technician's accept/reject decision.
type RespondRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason,omitempty"`
}

// ReassignRequest moves an assignment's task to a new technician.
type ReassignRequest struct {
	NewTechnicianID int64 `json:"new_technician_id"`
}

// AssignmentResponse represents an assignment in API responses.
type AssignmentResponse struct {
	ID              int64      `json:"id"`
	TaskID          string     `json:"task_id"`
	TechnicianID    int64      `json:"technician_id"`
	Status          string     `json:"status"`
	Method          string     `json:"method"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	AssignedAt      time.Time  `json:"assigned_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// StatisticsResponse aggregates assignment counts over a date range.
type StatisticsResponse struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	Rejected       int64   `json:"rejected"`
	CompletionRate float64 `json:"completion_rate"`
}

// ScheduleRequest is the request body for creating or partially updating a
// schedule. Omitted fields are left untouched on update.
type ScheduleRequest struct {
	TaskID            *string    `json:"task_id,omitempty"`
	TechnicianID      *int64     `json:"technician_id,omitempty"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	Priority          *string    `json:"priority,omitempty"`
	Status            *string    `json:"status,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	Recurring         *bool      `json:"recurring,omitempty"`
	RecurrenceType    *string    `json:"recurrence_type,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
}

// ScheduleResponse represents a schedule in API responses.
type ScheduleResponse struct {
	ID                int64      `json:"id"`
	TaskID            string     `json:"task_id"`
	TechnicianID      int64      `json:"technician_id"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	Recurring         bool       `json:"recurring"`
	RecurrenceType    *string    `json:"recurrence_type,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HealthResponse is the response body for health checks.
type HealthResponse struct {
	Status string `json:"status"`
}
