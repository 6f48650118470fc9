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

// ScheduleService creates and maintains technician calendar bookings with
// overlap validation. Intervals are half-open [start,end): bookings that
// merely touch do not conflict.
type ScheduleService struct {
	store Store
	log   *slog.Logger
}

// NewScheduleService creates a schedule service.
func NewScheduleService(s Store, log *slog.Logger) *ScheduleService {
	return &ScheduleService{store: s, log: log}
}

// ScheduleInput carries schedule fields for create and partial update.
// Nil fields are left untouched on update.
type ScheduleInput struct {
	TaskID            *string
	TechnicianID      *int64
	StartTime         *time.Time
	EndTime           *time.Time
	Priority          *store.TaskPriority
	Status            *store.ScheduleStatus
	Notes             *string
	Recurring         *bool
	RecurrenceType    *store.RecurrenceType
	RecurrenceEndDate *time.Time
}

// CreateSchedule validates the input, checks the technician's calendar for
// overlaps, and persists a new booking.
func (s *ScheduleService) CreateSchedule(ctx context.Context, in ScheduleInput) (*store.Schedule, error) {
	if in.TaskID == nil || strings.TrimSpace(*in.TaskID) == "" {
		return nil, invalidf("task id is required")
	}
	if in.TechnicianID == nil {
		return nil, invalidf("technician id is required")
	}
	if in.StartTime == nil {
		return nil, invalidf("start time is required")
	}
	if in.EndTime == nil {
		return nil, invalidf("end time is required")
	}
	if !in.EndTime.After(*in.StartTime) {
		return nil, invalidf("end time must be after start time")
	}

	if err := s.checkTaskExists(ctx, *in.TaskID); err != nil {
		return nil, err
	}
	if err := s.checkTechnicianActive(ctx, *in.TechnicianID); err != nil {
		return nil, err
	}
	if err := s.checkConflicts(ctx, *in.TechnicianID, *in.StartTime, *in.EndTime, 0); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sched := &store.Schedule{
		TaskID:       *in.TaskID,
		TechnicianID: *in.TechnicianID,
		StartTime:    *in.StartTime,
		EndTime:      *in.EndTime,
		Priority:     store.PriorityMedium,
		Status:       store.ScheduleScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.Priority != nil {
		if !store.ValidTaskPriority(*in.Priority) {
			return nil, invalidf("invalid schedule priority: %s", *in.Priority)
		}
		sched.Priority = *in.Priority
	}
	if in.Status != nil {
		if !store.ValidScheduleStatus(*in.Status) {
			return nil, invalidf("invalid schedule status: %s", *in.Status)
		}
		sched.Status = *in.Status
	}
	if in.Notes != nil {
		sched.Notes = *in.Notes
	}
	if in.Recurring != nil && *in.Recurring {
		sched.Recurring = true
		if in.RecurrenceType != nil {
			if !store.ValidRecurrenceType(*in.RecurrenceType) {
				return nil, invalidf("invalid recurrence type: %s", *in.RecurrenceType)
			}
			sched.RecurrenceType = in.RecurrenceType
		}
		sched.RecurrenceEndDate = in.RecurrenceEndDate
	}

	if err := s.store.CreateSchedule(ctx, nil, sched); err != nil {
		return nil, err
	}

	return sched, nil
}

// UpdateSchedule merges the non-nil input fields into the existing booking,
// re-validates the time window, and re-checks conflicts excluding the
// booking itself. Setting Recurring to false clears the recurrence fields.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id int64, in ScheduleInput) (*store.Schedule, error) {
	sched, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.TaskID != nil && strings.TrimSpace(*in.TaskID) != "" {
		if err := s.checkTaskExists(ctx, *in.TaskID); err != nil {
			return nil, err
		}
		sched.TaskID = *in.TaskID
	}
	if in.TechnicianID != nil {
		if err := s.checkTechnicianActive(ctx, *in.TechnicianID); err != nil {
			return nil, err
		}
		sched.TechnicianID = *in.TechnicianID
	}
	if in.StartTime != nil {
		sched.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		sched.EndTime = *in.EndTime
	}

	if !sched.EndTime.After(sched.StartTime) {
		return nil, invalidf("end time must be after start time")
	}
	if err := s.checkConflicts(ctx, sched.TechnicianID, sched.StartTime, sched.EndTime, id); err != nil {
		return nil, err
	}

	if in.Priority != nil {
		if !store.ValidTaskPriority(*in.Priority) {
			return nil, invalidf("invalid schedule priority: %s", *in.Priority)
		}
		sched.Priority = *in.Priority
	}
	if in.Status != nil {
		if !store.ValidScheduleStatus(*in.Status) {
			return nil, invalidf("invalid schedule status: %s", *in.Status)
		}
		sched.Status = *in.Status
	}
	if in.Notes != nil {
		sched.Notes = *in.Notes
	}
	if in.Recurring != nil {
		sched.Recurring = *in.Recurring
		if *in.Recurring {
			if in.RecurrenceType != nil {
				if !store.ValidRecurrenceType(*in.RecurrenceType) {
					return nil, invalidf("invalid recurrence type: %s", *in.RecurrenceType)
				}
				sched.RecurrenceType = in.RecurrenceType
			}
			if in.RecurrenceEndDate != nil {
				sched.RecurrenceEndDate = in.RecurrenceEndDate
			}
		} else {
			sched.RecurrenceType = nil
			sched.RecurrenceEndDate = nil
		}
	}

	sched.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateSchedule(ctx, nil, sched); err != nil {
		return nil, fmt.Errorf("failed to update schedule %d: %w", id, err)
	}

	return sched, nil
}

// GetSchedule returns a booking by ID.
func (s *ScheduleService) GetSchedule(ctx context.Context, id int64) (*store.Schedule, error) {
	return s.getSchedule(ctx, id)
}

// DeleteSchedule removes a booking.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id int64) error {
	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("schedule", strconv.FormatInt(id, 10))
		}
		return fmt.Errorf("failed to delete schedule %d: %w", id, err)
	}
	return nil
}

// TechnicianSchedules returns a technician's bookings ordered by start time.
func (s *ScheduleService) TechnicianSchedules(ctx context.Context, technicianID int64) ([]store.Schedule, error) {
	return s.store.ListSchedulesByTechnician(ctx, technicianID)
}

// TaskSchedules returns the bookings referencing a task.
func (s *ScheduleService) TaskSchedules(ctx context.Context, taskID string) ([]store.Schedule, error) {
	return s.store.ListSchedulesByTask(ctx, taskID)
}

// SchedulesBetween returns bookings starting within [start,end].
func (s *ScheduleService) SchedulesBetween(ctx context.Context, start, end time.Time) ([]store.Schedule, error) {
	return s.store.ListSchedulesBetween(ctx, start, end)
}

// ScheduleFromTask books a default MEDIUM/SCHEDULED slot for a task.
func (s *ScheduleService) ScheduleFromTask(ctx context.Context, taskID string, technicianID int64, start, end time.Time) (*store.Schedule, error) {
	return s.CreateSchedule(ctx, ScheduleInput{
		TaskID:       &taskID,
		TechnicianID: &technicianID,
		StartTime:    &start,
		EndTime:      &end,
	})
}

func (s *ScheduleService) checkConflicts(ctx context.Context, technicianID int64, start, end time.Time, excludeID int64) error {
	conflicts, err := s.store.FindConflictingSchedules(ctx, technicianID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check schedule conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		return rulef("technician %d has %d conflicting schedule(s) during this time period",
			technicianID, len(conflicts))
	}
	return nil
}

func (s *ScheduleService) checkTaskExists(ctx context.Context, taskID string) error {
	exists, err := s.store.TaskExists(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to check task %s: %w", taskID, err)
	}
	if !exists {
		return notFound("task", taskID)
	}
	return nil
}

func (s *ScheduleService) checkTechnicianActive(ctx context.Context, technicianID int64) error {
	technician, err := s.store.GetStaffByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("technician", strconv.FormatInt(technicianID, 10))
		}
		return fmt.Errorf("failed to load technician %d: %w", technicianID, err)
	}
	if !technician.Active {
		return rulef("technician %d is not active", technicianID)
	}
	return nil
}

func (s *ScheduleService) getSchedule(ctx context.Context, id int64) (*store.Schedule, error) {
	sched, err := s.store.GetScheduleByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("schedule", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to load schedule %d: %w", id, err)
	}
	return sched, nil
}
