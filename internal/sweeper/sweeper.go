// Package sweeper runs the periodic cleanup jobs: purging old schedules and
// nudging technicians about stale pending assignments. Sweep failures are
// logged and swallowed; they never affect request handling.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fleetops/internal/notify"
	"fleetops/internal/store"
)

// SweepStore is the slice of the store the sweeper needs.
type SweepStore interface {
	DeleteSchedulesEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ListStalePendingAssignments(ctx context.Context, cutoff time.Time) ([]store.Assignment, error)
	GetStaffByID(ctx context.Context, id int64) (*store.Staff, error)
}

// Sweeper owns the cron scheduler for cleanup jobs.
type Sweeper struct {
	store       SweepStore
	notifier    notify.Notifier
	log         *slog.Logger
	cron        *cron.Cron
	retention   time.Duration
	reminderAge time.Duration
}

// New creates a sweeper. retention is how long finished schedules are kept;
// reminderAge is how long an assignment may sit PENDING_ACCEPTANCE before a
// reminder is sent.
func New(s SweepStore, notifier notify.Notifier, log *slog.Logger, retention, reminderAge time.Duration) *Sweeper {
	return &Sweeper{
		store:       s,
		notifier:    notifier,
		log:         log,
		cron:        cron.New(),
		retention:   retention,
		reminderAge: reminderAge,
	}
}

// Start registers both sweeps under the given cron spec and starts the
// scheduler in its own goroutine.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("failed to register cleanup sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) runOnce() {
	ctx := context.Background()
	s.purgeOldSchedules(ctx)
	s.remindStalePending(ctx)
}

func (s *Sweeper) purgeOldSchedules(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)
	removed, err := s.store.DeleteSchedulesEndedBefore(ctx, cutoff)
	if err != nil {
		s.log.WarnContext(ctx, "schedule purge sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.log.InfoContext(ctx, "purged old schedules", "removed", removed, "cutoff", cutoff)
	}
}

func (s *Sweeper) remindStalePending(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.reminderAge)
	stale, err := s.store.ListStalePendingAssignments(ctx, cutoff)
	if err != nil {
		s.log.WarnContext(ctx, "stale assignment sweep failed", "error", err)
		return
	}

	for _, a := range stale {
		technician, err := s.store.GetStaffByID(ctx, a.TechnicianID)
		if err != nil {
			s.log.WarnContext(ctx, "stale assignment reminder skipped",
				"assignment_id", a.ID, "technician_id", a.TechnicianID, "error", err)
			continue
		}

		subject := fmt.Sprintf("Reminder: assignment %d awaits your response", a.ID)
		body := fmt.Sprintf("Task %s was offered to you at %s and is still pending.",
			a.TaskID, a.AssignedAt.Format(time.RFC3339))
		if err := s.notifier.Send(ctx, technician.Email, subject, body); err != nil {
			s.log.WarnContext(ctx, "stale assignment reminder failed",
				"assignment_id", a.ID, "technician_id", a.TechnicianID, "error", err)
		}
	}
}
