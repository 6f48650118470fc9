// Package store contains the database layer for fleetops.
package store

import "time"

// Staff represents a member of the maintenance workforce.
// Only staff with RoleTechnician receive assignments and schedules.
type Staff struct {
	ID        int64
	Name      string
	Email     string
	Role      StaffRole
	Active    bool
	Available bool
	CreatedAt time.Time
}

// StaffRole distinguishes technicians from the rest of the workforce.
type StaffRole string

const (
	RoleTechnician StaffRole = "TECHNICIAN"
	RoleDriver     StaffRole = "DRIVER"
	RoleDispatcher StaffRole = "DISPATCHER"
	RoleAdmin      StaffRole = "ADMIN"
)

// Equipment is a piece of fleet equipment a task can be linked to.
// Tasks hold a weak reference; equipment outlives its tasks.
type Equipment struct {
	ID           int64
	Name         string
	SerialNumber string
	Location     string
	CreatedAt    time.Time
}

// Task represents one unit of maintenance work.
// The ID is caller-supplied, not generated.
type Task struct {
	ID               string
	Description      string
	Priority         TaskPriority
	Status           TaskStatus
	CompletionPct    float64
	EstimatedMinutes int64
	RequiredSkills   []string
	RequiredParts    []string
	EquipmentID      *int64
	TechnicianID     *int64
	CreatedAt        time.Time
	DueDate          *time.Time
	LastUpdated      time.Time
	CompletedAt      *time.Time
}

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "LOW"
	PriorityMedium   TaskPriority = "MEDIUM"
	PriorityHigh     TaskPriority = "HIGH"
	PriorityCritical TaskPriority = "CRITICAL"
)

// ValidTaskPriority reports whether p is a known priority value.
func ValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPlanned    TaskStatus = "PLANNED"
	TaskStatusScheduled  TaskStatus = "SCHEDULED"
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusAssigned   TaskStatus = "ASSIGNED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusOnHold     TaskStatus = "ON_HOLD"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPlanned, TaskStatusScheduled, TaskStatusPending,
		TaskStatusAssigned, TaskStatusInProgress, TaskStatusOnHold,
		TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Assignment is the offer of a task to a technician. It has its own
// lifecycle distinct from the task's status. Terminal rows (REJECTED,
// COMPLETED) are never reused; reassignment creates a new row.
type Assignment struct {
	ID              int64
	TaskID          string
	TechnicianID    int64
	Status          AssignmentStatus
	Method          AssignmentMethod
	RejectionReason *string
	AssignedAt      time.Time
	RespondedAt     *time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// AssignmentStatus is the state of an assignment offer.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "PENDING_ACCEPTANCE"
	AssignmentAccepted   AssignmentStatus = "ACCEPTED"
	AssignmentRejected   AssignmentStatus = "REJECTED"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
)

// ValidAssignmentStatus reports whether s is a known assignment status.
func ValidAssignmentStatus(s AssignmentStatus) bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentRejected,
		AssignmentInProgress, AssignmentCompleted:
		return true
	}
	return false
}

// AssignmentMethod records how the technician was chosen.
type AssignmentMethod string

const (
	MethodAutomatic AssignmentMethod = "AUTOMATIC"
	MethodManual    AssignmentMethod = "MANUAL"
)

// Schedule is a calendar booking of a technician for a time window,
// optionally tied to a task by ID. Intervals are half-open [start,end).
type Schedule struct {
	ID                int64
	TaskID            string
	TechnicianID      int64
	StartTime         time.Time
	EndTime           time.Time
	Priority          TaskPriority
	Status            ScheduleStatus
	Notes             string
	Recurring         bool
	RecurrenceType    *RecurrenceType
	RecurrenceEndDate *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ScheduleStatus is the state of a booking.
type ScheduleStatus string

const (
	ScheduleScheduled  ScheduleStatus = "SCHEDULED"
	ScheduleConfirmed  ScheduleStatus = "CONFIRMED"
	ScheduleInProgress ScheduleStatus = "IN_PROGRESS"
	ScheduleOnHold     ScheduleStatus = "ON_HOLD"
	ScheduleCompleted  ScheduleStatus = "COMPLETED"
	ScheduleCancelled  ScheduleStatus = "CANCELLED"
)

// ValidScheduleStatus reports whether s is a known schedule status.
func ValidScheduleStatus(s ScheduleStatus) bool {
	switch s {
	case ScheduleScheduled, ScheduleConfirmed, ScheduleInProgress,
		ScheduleOnHold, ScheduleCompleted, ScheduleCancelled:
		return true
	}
	return false
}

// RecurrenceType is the repeat cadence of a recurring schedule.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "DAILY"
	RecurWeekly  RecurrenceType = "WEEKLY"
	RecurMonthly RecurrenceType = "MONTHLY"
	RecurYearly  RecurrenceType = "YEARLY"
)

// ValidRecurrenceType reports whether r is a known recurrence type.
func ValidRecurrenceType(r RecurrenceType) bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}
