package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"fleetops/internal/notify"
	"fleetops/internal/store"
)

// Store combines the repositories the maintenance workflow needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	store.TaskStore
	store.AssignmentStore
	store.ScheduleStore
	store.StaffStore
	store.EquipmentStore
}

// DefaultMaxActiveAssignments is the capacity threshold for manual
// assignment and reassignment: a technician already holding this many
// ACCEPTED or IN_PROGRESS assignments cannot take another.
const DefaultMaxActiveAssignments = 5

const reassignedReason = "Reassigned to another technician"

// AssignmentService orchestrates the offer-and-acceptance workflow binding
// tasks to technicians.
type AssignmentService struct {
	store     Store
	notifier  notify.Notifier
	log       *slog.Logger
	maxActive int
}

// NewAssignmentService creates an assignment service with the default
// capacity threshold.
func NewAssignmentService(s Store, notifier notify.Notifier, log *slog.Logger) *AssignmentService {
	return &AssignmentService{
		store:     s,
		notifier:  notifier,
		log:       log,
		maxActive: DefaultMaxActiveAssignments,
	}
}

// AssignAutomatically offers the task to the available technician with the
// fewest active assignments. Ties break on the lowest staff ID, which is the
// iteration order of the available-technicians query.
func (s *AssignmentService) AssignAutomatically(ctx context.Context, taskID string) (*store.Assignment, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	technician, err := s.findBestAvailableTechnician(ctx)
	if err != nil {
		return nil, err
	}
	if technician == nil {
		return nil, rulef("no available technician found for task %s", taskID)
	}

	return s.createAssignment(ctx, task, technician, store.MethodAutomatic)
}

// AssignManually offers the task to a specific technician, enforcing the
// active-assignment capacity threshold.
func (s *AssignmentService) AssignManually(ctx context.Context, taskID string, technicianID int64) (*store.Assignment, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	technician, err := s.getTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCapacity(ctx, technicianID); err != nil {
		return nil, err
	}

	return s.createAssignment(ctx, task, technician, store.MethodManual)
}

// Respond records the technician's accept or reject decision on a pending
// assignment. The rejection reason is only stored when accept is false.
func (s *AssignmentService) Respond(ctx context.Context, assignmentID int64, accept bool, reason string) (*store.Assignment, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != store.AssignmentPending {
		return nil, rulef("assignment %d is not pending acceptance", assignmentID)
	}

	now := time.Now().UTC()
	assignment.RespondedAt = &now
	if accept {
		assignment.Status = store.AssignmentAccepted
	} else {
		assignment.Status = store.AssignmentRejected
		assignment.RejectionReason = &reason
	}

	if err := s.store.UpdateAssignment(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment %d: %w", assignmentID, err)
	}

	s.notifyResponse(ctx, assignment)
	return assignment, nil
}

// Reassign moves the task behind an assignment to a new technician. The old
// row is kept as a historical record: if it was still PENDING_ACCEPTANCE or
// ACCEPTED it is marked REJECTED with a fixed reason, never deleted. A brand
// new MANUAL assignment row is created for the new technician.
func (s *AssignmentService) Reassign(ctx context.Context, assignmentID, newTechnicianID int64) (*store.Assignment, error) {
	current, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	newTechnician, err := s.getTechnician(ctx, newTechnicianID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCapacity(ctx, newTechnicianID); err != nil {
		return nil, err
	}

	task, err := s.getTask(ctx, current.TaskID)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if current.Status == store.AssignmentPending || current.Status == store.AssignmentAccepted {
		reason := reassignedReason
		current.Status = store.AssignmentRejected
		current.RejectionReason = &reason
		if err := s.store.UpdateAssignment(ctx, tx, current); err != nil {
			return nil, fmt.Errorf("failed to reject assignment %d: %w", assignmentID, err)
		}
	}

	replacement := &store.Assignment{
		TaskID:       task.ID,
		TechnicianID: newTechnician.ID,
		Status:       store.AssignmentPending,
		Method:       store.MethodManual,
		AssignedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateAssignment(ctx, tx, replacement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reassignment: %w", err)
	}

	s.notifyAssignment(ctx, newTechnician, task)
	return replacement, nil
}

// Start moves an accepted assignment into IN_PROGRESS.
func (s *AssignmentService) Start(ctx context.Context, assignmentID int64) (*store.Assignment, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != store.AssignmentAccepted {
		return nil, rulef("assignment %d must be accepted before it can be started", assignmentID)
	}

	now := time.Now().UTC()
	assignment.Status = store.AssignmentInProgress
	assignment.StartedAt = &now

	if err := s.store.UpdateAssignment(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment %d: %w", assignmentID, err)
	}

	return assignment, nil
}

// Complete moves an in-progress assignment into COMPLETED. It does not touch
// the linked task's status or completion percentage; that is a separate call
// through TaskService.
func (s *AssignmentService) Complete(ctx context.Context, assignmentID int64) (*store.Assignment, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.Status != store.AssignmentInProgress {
		return nil, rulef("assignment %d must be in progress to be completed", assignmentID)
	}

	now := time.Now().UTC()
	assignment.Status = store.AssignmentCompleted
	assignment.CompletedAt = &now

	if err := s.store.UpdateAssignment(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment %d: %w", assignmentID, err)
	}

	return assignment, nil
}

// GetAssignment returns a single assignment by ID.
func (s *AssignmentService) GetAssignment(ctx context.Context, assignmentID int64) (*store.Assignment, error) {
	return s.getAssignment(ctx, assignmentID)
}

// TechnicianAssignments returns a technician's assignments, optionally
// narrowed to one status.
func (s *AssignmentService) TechnicianAssignments(ctx context.Context, technicianID int64, status *store.AssignmentStatus) ([]store.Assignment, error) {
	var statuses []store.AssignmentStatus
	if status != nil {
		if !store.ValidAssignmentStatus(*status) {
			return nil, invalidf("invalid assignment status: %s", *status)
		}
		statuses = []store.AssignmentStatus{*status}
	}
	return s.store.ListAssignmentsByTechnician(ctx, technicianID, statuses)
}

// TaskAssignments returns the full assignment history of a task.
func (s *AssignmentService) TaskAssignments(ctx context.Context, taskID string) ([]store.Assignment, error) {
	return s.store.ListAssignmentsByTask(ctx, taskID)
}

// AssignmentsBetween returns assignments created within [start,end].
func (s *AssignmentService) AssignmentsBetween(ctx context.Context, start, end time.Time) ([]store.Assignment, error) {
	return s.store.ListAssignmentsBetween(ctx, start, end)
}

// PendingAssignments returns a technician's offers awaiting a response.
func (s *AssignmentService) PendingAssignments(ctx context.Context, technicianID int64) ([]store.Assignment, error) {
	return s.store.ListAssignmentsByTechnician(ctx, technicianID,
		[]store.AssignmentStatus{store.AssignmentPending})
}

// ActiveAssignments returns a technician's ACCEPTED and IN_PROGRESS
// assignments, the ones counting toward capacity.
func (s *AssignmentService) ActiveAssignments(ctx context.Context, technicianID int64) ([]store.Assignment, error) {
	return s.store.ListAssignmentsByTechnician(ctx, technicianID,
		[]store.AssignmentStatus{store.AssignmentAccepted, store.AssignmentInProgress})
}

// Statistics aggregates assignment counts over a date range.
type Statistics struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
	Rejected  int64 `json:"rejected"`
}

// CompletionRate returns completed/total as a percentage, 0 when empty.
func (st Statistics) CompletionRate() float64 {
	if st.Total == 0 {
		return 0
	}
	return float64(st.Completed) / float64(st.Total) * 100
}

// Statistics aggregates assignment counts for assignments created within
// [start,end].
func (s *AssignmentService) Statistics(ctx context.Context, start, end time.Time) (Statistics, error) {
	assignments, err := s.store.ListAssignmentsBetween(ctx, start, end)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{Total: int64(len(assignments))}
	for _, a := range assignments {
		switch a.Status {
		case store.AssignmentCompleted:
			stats.Completed++
		case store.AssignmentPending:
			stats.Pending++
		case store.AssignmentRejected:
			stats.Rejected++
		}
	}

	return stats, nil
}

// findBestAvailableTechnician scans the available pool and picks the strict
// minimum active-assignment count. The pool is ordered by staff ID, so the
// first technician at the minimum wins.
func (s *AssignmentService) findBestAvailableTechnician(ctx context.Context) (*store.Staff, error) {
	technicians, err := s.store.ListAvailableTechnicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available technicians: %w", err)
	}

	var best *store.Staff
	lowest := -1
	for i := range technicians {
		count, err := s.store.CountActiveAssignments(ctx, technicians[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count assignments for technician %d: %w", technicians[i].ID, err)
		}
		if best == nil || count < lowest {
			best = &technicians[i]
			lowest = count
		}
	}

	return best, nil
}

func (s *AssignmentService) checkCapacity(ctx context.Context, technicianID int64) error {
	active, err := s.store.CountActiveAssignments(ctx, technicianID)
	if err != nil {
		return fmt.Errorf("failed to count assignments for technician %d: %w", technicianID, err)
	}
	if active >= s.maxActive {
		return rulef("technician %d already has %d active assignments", technicianID, active)
	}
	return nil
}

func (s *AssignmentService) createAssignment(ctx context.Context, task *store.Task, technician *store.Staff, method store.AssignmentMethod) (*store.Assignment, error) {
	assignment := &store.Assignment{
		TaskID:       task.ID,
		TechnicianID: technician.ID,
		Status:       store.AssignmentPending,
		Method:       method,
		AssignedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateAssignment(ctx, nil, assignment); err != nil {
		return nil, err
	}

	s.notifyAssignment(ctx, technician, task)
	return assignment, nil
}

// notifyAssignment is fire-and-forget: a delivery failure is logged and
// never propagated to the caller.
func (s *AssignmentService) notifyAssignment(ctx context.Context, technician *store.Staff, task *store.Task) {
	subject := fmt.Sprintf("New maintenance assignment: %s", task.ID)
	body := fmt.Sprintf("You have been offered task %s: %s", task.ID, task.Description)
	if err := s.notifier.Send(ctx, technician.Email, subject, body); err != nil {
		s.log.WarnContext(ctx, "assignment notification failed",
			"technician_id", technician.ID,
			"task_id", task.ID,
			"error", err,
		)
	}
}

// notifyResponse confirms a recorded decision back to the technician. Also
// fire-and-forget: a failed staff lookup or delivery is logged and swallowed.
func (s *AssignmentService) notifyResponse(ctx context.Context, assignment *store.Assignment) {
	technician, err := s.store.GetStaffByID(ctx, assignment.TechnicianID)
	if err != nil {
		s.log.WarnContext(ctx, "response notification skipped",
			"assignment_id", assignment.ID,
			"technician_id", assignment.TechnicianID,
			"error", err,
		)
		return
	}

	decision := "accepted"
	if assignment.Status == store.AssignmentRejected {
		decision = "rejected"
	}
	subject := fmt.Sprintf("Assignment %d %s", assignment.ID, decision)
	body := fmt.Sprintf("Your response to task %s has been recorded as %s.",
		assignment.TaskID, assignment.Status)
	if err := s.notifier.Send(ctx, technician.Email, subject, body); err != nil {
		s.log.WarnContext(ctx, "response notification failed",
			"assignment_id", assignment.ID,
			"technician_id", technician.ID,
			"error", err,
		)
	}
}

func (s *AssignmentService) getTask(ctx context.Context, taskID string) (*store.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("task", taskID)
		}
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	return task, nil
}

func (s *AssignmentService) getTechnician(ctx context.Context, technicianID int64) (*store.Staff, error) {
	technician, err := s.store.GetStaffByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("technician", strconv.FormatInt(technicianID, 10))
		}
		return nil, fmt.Errorf("failed to load technician %d: %w", technicianID, err)
	}
	return technician, nil
}

func (s *AssignmentService) getAssignment(ctx context.Context, assignmentID int64) (*store.Assignment, error) {
	assignment, err := s.store.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("assignment", strconv.FormatInt(assignmentID, 10))
		}
		return nil, fmt.Errorf("failed to load assignment %d: %w", assignmentID, err)
	}
	return assignment, nil
}
