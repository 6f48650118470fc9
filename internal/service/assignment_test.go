package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fleetops/internal/notify"
	"fleetops/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAssignmentService(f *fakeStore) *AssignmentService {
	return NewAssignmentService(f, notify.Noop{}, testLogger())
}

type sentNotification struct {
	recipient string
	subject   string
	body      string
}

type recordingNotifier struct {
	sent []sentNotification
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, recipient, subject, body string) error {
	r.sent = append(r.sent, sentNotification{recipient: recipient, subject: subject, body: body})
	return r.err
}

func TestAssignAutomatically_PicksLeastLoadedTechnician(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusPlanned)
	f.seedTechnician(1)
	f.seedTechnician(2)
	// Technician 1 holds two active assignments, technician 2 none.
	f.seedAssignment("TASK-A", 1, store.AssignmentAccepted)
	f.seedAssignment("TASK-B", 1, store.AssignmentInProgress)

	svc := newAssignmentService(f)
	assignment, err := svc.AssignAutomatically(context.Background(), "TASK-1")
	if err != nil {
		t.Fatalf("AssignAutomatically failed: %v", err)
	}

	if assignment.TechnicianID != 2 {
		t.Errorf("got technician %d, want 2 (least loaded)", assignment.TechnicianID)
	}
	if assignment.Status != store.AssignmentPending {
		t.Errorf("got status %v, want PENDING_ACCEPTANCE", assignment.Status)
	}
	if assignment.Method != store.MethodAutomatic {
		t.Errorf("got method %v, want AUTOMATIC", assignment.Method)
	}
}

func TestAssignAutomatically_TieBreaksOnLowestID(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusPlanned)
	f.seedTechnician(9)
	f.seedTechnician(3)
	f.seedTechnician(5)

	svc := newAssignmentService(f)
	assignment, err := svc.AssignAutomatically(context.Background(), "TASK-1")
	if err != nil {
		t.Fatalf("AssignAutomatically failed: %v", err)
	}

	if assignment.TechnicianID != 3 {
		t.Errorf("got technician %d, want 3 (lowest ID among tied)", assignment.TechnicianID)
	}
}

func TestAssignAutomatically_NoAvailableTechnician(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusPlanned)
	unavailable := f.seedTechnician(1)
	unavailable.Available = false

	svc := newAssignmentService(f)
	_, err := svc.AssignAutomatically(context.Background(), "TASK-1")
	if !IsRuleViolation(err) {
		t.Errorf("expected rule violation, got %v", err)
	}
}

func TestAssignAutomatically_TaskNotFound(t *testing.T) {
	f := newFakeStore()
	f.seedTechnician(1)

	svc := newAssignmentService(f)
	_, err := svc.AssignAutomatically(context.Background(), "MISSING")
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAssignManually_Lifecycle(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusPlanned)
	f.seedTechnician(7)

	svc := newAssignmentService(f)
	ctx := context.Background()

	assignment, err := svc.AssignManually(ctx, "TASK-1", 7)
	if err != nil {
		t.Fatalf("AssignManually failed: %v", err)
	}
	if assignment.Status != store.AssignmentPending || assignment.Method != store.MethodManual {
		t.Fatalf("got %v/%v, want PENDING_ACCEPTANCE/MANUAL", assignment.Status, assignment.Method)
	}

	accepted, err := svc.Respond(ctx, assignment.ID, true, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if accepted.Status != store.AssignmentAccepted {
		t.Fatalf("got status %v, want ACCEPTED", accepted.Status)
	}
	if accepted.RespondedAt == nil {
		t.Fatal("expected RespondedAt to be stamped")
	}

	started, err := svc.Start(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if started.Status != store.AssignmentInProgress || started.StartedAt == nil {
		t.Fatalf("got %v, want IN_PROGRESS with StartedAt", started.Status)
	}

	completed, err := svc.Complete(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.Status != store.AssignmentCompleted || completed.CompletedAt == nil {
		t.Fatalf("got %v, want COMPLETED with CompletedAt", completed.Status)
	}
}

func TestAssignManually_CapacityExceeded(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-NEW", store.TaskStatusPlanned)
	f.seedTechnician(7)
	for i := 0; i < DefaultMaxActiveAssignments; i++ {
		f.seedAssignment("TASK-OLD", 7, store.AssignmentAccepted)
	}

	svc := newAssignmentService(f)
	_, err := svc.AssignManually(context.Background(), "TASK-NEW", 7)
	if !IsRuleViolation(err) {
		t.Errorf("expected rule violation at capacity, got %v", err)
	}
}

func TestRespond_RejectStoresReason(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusPlanned)
	f.seedTechnician(7)
	a := f.seedAssignment("TASK-1", 7, store.AssignmentPending)

	svc := newAssignmentService(f)
	rejected, err := svc.Respond(context.Background(), a.ID, false, "on another job")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if rejected.Status != store.AssignmentRejected {
		t.Errorf("got status %v, want REJECTED", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "on another job" {
		t.Errorf("got reason %v, want \"on another job\"", rejected.RejectionReason)
	}
}

func TestRespond_NotifiesTechnicianOfRecordedDecision(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusPlanned)
	f.seedTechnician(7)
	a := f.seedAssignment("TASK-1", 7, store.AssignmentPending)

	n := &recordingNotifier{}
	svc := NewAssignmentService(f, n, testLogger())

	if _, err := svc.Respond(context.Background(), a.ID, true, ""); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	if len(n.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(n.sent))
	}
	if n.sent[0].recipient != "tech@fleet.example" {
		t.Errorf("got recipient %q, want tech@fleet.example", n.sent[0].recipient)
	}
	if !strings.Contains(n.sent[0].subject, "accepted") {
		t.Errorf("got subject %q, want it to mention the accepted decision", n.sent[0].subject)
	}
}

func TestRespond_NotificationFailureDoesNotFailResponse(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusPlanned)
	f.seedTechnician(7)
	a := f.seedAssignment("TASK-1", 7, store.AssignmentPending)

	n := &recordingNotifier{err: errors.New("smtp refused")}
	svc := NewAssignmentService(f, n, testLogger())

	rejected, err := svc.Respond(context.Background(), a.ID, false, "on another job")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if rejected.Status != store.AssignmentRejected {
		t.Errorf("got status %v, want REJECTED", rejected.Status)
	}
	if len(n.sent) != 1 || !strings.Contains(n.sent[0].subject, "rejected") {
		t.Errorf("got notifications %v, want one rejected confirmation", n.sent)
	}
}

func TestRespond_NotPending(t *testing.T) {
	f := newFakeStore()
	a := f.seedAssignment("TASK-1", 7, store.AssignmentAccepted)

	svc := newAssignmentService(f)
	_, err := svc.Respond(context.Background(), a.ID, true, "")
	if !IsRuleViolation(err) {
		t.Errorf("expected rule violation for non-pending assignment, got %v", err)
	}
}

func TestStart_RequiresAccepted(t *testing.T) {
	f := newFakeStore()
	a := f.seedAssignment("TASK-1", 7, store.AssignmentPending)

	svc := newAssignmentService(f)
	_, err := svc.Start(context.Background(), a.ID)
	if !IsRuleViolation(err) {
		t.Errorf("expected rule violation, got %v", err)
	}
}

func TestComplete_RequiresInProgress(t *testing.T) {
	f := newFakeStore()
	a := f.seedAssignment("TASK-1", 7, store.AssignmentAccepted)

	svc := newAssignmentService(f)
	_, err := svc.Complete(context.Background(), a.ID)
	if !IsRuleViolation(err) {
		t.Errorf("expected rule violation, got %v", err)
	}
}

func TestComplete_DoesNotTouchTask(t *testing.T) {
	f := newFakeStore()
	task := f.seedTask("TASK-1", store.TaskStatusInProgress)
	task.CompletionPct = 60
	a := f.seedAssignment("TASK-1", 7, store.AssignmentInProgress)

	svc := newAssignmentService(f)
	if _, err := svc.Complete(context.Background(), a.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	after := f.tasks["TASK-1"]
	if after.Status != store.TaskStatusInProgress || after.CompletionPct != 60 {
		t.Errorf("task changed to %v/%v; completing the assignment must not cascade",
			after.Status, after.CompletionPct)
	}
}

func TestReassign_KeepsOldRowAsRejected(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusAssigned)
	f.seedTechnician(1)
	f.seedTechnician(2)
	old := f.seedAssignment("TASK-1", 1, store.AssignmentAccepted)

	svc := newAssignmentService(f)
	replacement, err := svc.Reassign(context.Background(), old.ID, 2)
	if err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}

	if replacement.ID == old.ID {
		t.Error("expected a brand new assignment row")
	}
	if replacement.TechnicianID != 2 || replacement.Status != store.AssignmentPending || replacement.Method != store.MethodManual {
		t.Errorf("got %+v, want pending manual assignment for technician 2", replacement)
	}

	kept := f.assignments[old.ID]
	if kept.Status != store.AssignmentRejected {
		t.Errorf("got old status %v, want REJECTED", kept.Status)
	}
	if kept.RejectionReason == nil || *kept.RejectionReason != reassignedReason {
		t.Errorf("got old reason %v, want %q", kept.RejectionReason, reassignedReason)
	}
	if f.commits != 1 {
		t.Errorf("got %d commits, want 1", f.commits)
	}
}

func TestReassign_CompletedRowLeftUntouched(t *testing.T) {
	f := newFakeStore()
	f.seedTask("TASK-1", store.TaskStatusCompleted)
	f.seedTechnician(2)
	old := f.seedAssignment("TASK-1", 1, store.AssignmentCompleted)

	svc := newAssignmentService(f)
	if _, err := svc.Reassign(context.Background(), old.ID, 2); err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}

	if f.assignments[old.ID].Status != store.AssignmentCompleted {
		t.Errorf("completed historical record must not be rewritten, got %v", f.assignments[old.ID].Status)
	}
}

func TestStatistics_CompletionRate(t *testing.T) {
	f := newFakeStore()
	f.seedAssignment("T1", 1, store.AssignmentCompleted)
	f.seedAssignment("T2", 1, store.AssignmentCompleted)
	f.seedAssignment("T3", 2, store.AssignmentPending)
	f.seedAssignment("T4", 2, store.AssignmentRejected)

	svc := newAssignmentService(f)
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	stats, err := svc.Statistics(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}

	if stats.Total != 4 || stats.Completed != 2 || stats.Pending != 1 || stats.Rejected != 1 {
		t.Errorf("got %+v, want total=4 completed=2 pending=1 rejected=1", stats)
	}
	if rate := stats.CompletionRate(); rate != 50 {
		t.Errorf("got completion rate %v, want 50", rate)
	}
}

func TestStatistics_EmptyRangeHasZeroRate(t *testing.T) {
	f := newFakeStore()
	svc := newAssignmentService(f)

	stats, err := svc.Statistics(context.Background(), time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if rate := stats.CompletionRate(); rate != 0 {
		t.Errorf("got completion rate %v, want 0", rate)
	}
}

func TestTechnicianAssignments_InvalidStatus(t *testing.T) {
	f := newFakeStore()
	svc := newAssignmentService(f)

	bad := store.AssignmentStatus("BOGUS")
	_, err := svc.TechnicianAssignments(context.Background(), 1, &bad)
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
