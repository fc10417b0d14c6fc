package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/email"
	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/metrics"
)

// Sweep outcomes reported to metrics.
const (
	SweepSkipped = "skipped"
	SweepRan     = "ran"
	SweepError   = "error"
)

// ReminderJob emails alarms that have come due. A dirty flag keeps idle
// sweeps from touching the database: it is raised by Trigger and at startup
// when pending alarms exist, and re-read from the database after each run.
type ReminderJob struct {
	repo   domain.CalendarEventRepository
	mailer email.Mailer
	loc    *time.Location
	now    func() time.Time

	dirty   atomic.Bool
	running sync.Mutex
}

func NewReminderJob(repo domain.CalendarEventRepository, mailer email.Mailer, loc *time.Location) *ReminderJob {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderJob{
		repo:   repo,
		mailer: mailer,
		loc:    loc,
		now:    time.Now,
	}
}

// Init raises the flag when any alarm is still pending.
func (j *ReminderJob) Init(ctx context.Context) error {
	pending, err := j.repo.ExistsPendingAlarm(ctx)
	if err != nil {
		return err
	}
	j.dirty.Store(pending)
	return nil
}

// Trigger marks that an alarm was added or moved.
func (j *ReminderJob) Trigger() {
	j.dirty.Store(true)
}

func (j *ReminderJob) Pending() bool {
	return j.dirty.Load()
}

// Sweep sends every due reminder and returns how many were delivered.
// Failed sends stay pending for the next sweep.
func (j *ReminderJob) Sweep(ctx context.Context) (int, error) {
	if !j.running.TryLock() {
		metrics.ReminderSweep(SweepSkipped)
		return 0, nil
	}
	defer j.running.Unlock()

	if !j.dirty.Swap(false) {
		metrics.ReminderSweep(SweepSkipped)
		return 0, nil
	}

	sent, err := j.sweep(ctx)
	if err != nil {
		j.dirty.Store(true)
		metrics.ReminderSweep(SweepError)
		logger.Log.Error("reminder sweep failed", "error", err)
		return sent, err
	}

	pending, err := j.repo.ExistsPendingAlarm(ctx)
	if err != nil {
		j.dirty.Store(true)
		metrics.ReminderSweep(SweepError)
		logger.Log.Error("failed to re-check pending alarms", "error", err)
		return sent, err
	}
	if pending {
		j.dirty.Store(true)
	}

	metrics.ReminderSweep(SweepRan)
	return sent, nil
}

func (j *ReminderJob) sweep(ctx context.Context) (int, error) {
	due, err := j.repo.ListDueAlarms(ctx, j.now().In(j.loc))
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	notified := make([]string, 0, len(due))
	for _, d := range due {
		if err := j.send(ctx, d); err != nil {
			metrics.ReminderSent(false)
			logger.Log.Error("failed to send reminder",
				"event_id", d.Event.ID,
				"user_id", d.Event.UserID,
				"error", err,
			)
			continue
		}
		metrics.ReminderSent(true)
		notified = append(notified, d.Event.ID)
	}

	if err := j.repo.MarkNotified(ctx, notified); err != nil {
		return 0, err
	}
	logger.Log.Info("reminder sweep finished", "due", len(due), "sent", len(notified))
	return len(notified), nil
}

func (j *ReminderJob) send(ctx context.Context, d domain.DueReminder) error {
	msg, err := email.ReminderMessage(d.UserEmail, email.ReminderData{
		UserName: d.UserName,
		Title:    d.Event.Title,
		Date:     d.Event.Date,
		Time:     d.Event.Time,
		Notes:    d.Event.Notes,
	})
	if err != nil {
		return err
	}
	return j.mailer.Send(ctx, msg)
}
