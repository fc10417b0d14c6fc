// Package scheduler runs the periodic background jobs on a gocron scheduler.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/metrics"
	"applyfollow-backend/pkg/oauth"

	"github.com/go-co-op/gocron"
)

const (
	reminderTag    = "reminder_sweep"
	oauth2SweepTag = "oauth2_request_sweep"
	jobRunTimeout  = 2 * time.Minute
)

type Config struct {
	ReminderInterval    time.Duration
	OAuth2SweepInterval time.Duration
	Location            *time.Location
}

// Scheduler owns the cron scheduler and the jobs registered on it.
type Scheduler struct {
	cron      *gocron.Scheduler
	reminders *ReminderJob
	requests  *oauth.RequestCache

	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the reminder sweep and, when requests is not nil, the
// OAuth2 request cache sweep.
func New(cfg Config, reminders *ReminderJob, requests *oauth.RequestCache) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:      gocron.NewScheduler(loc),
		reminders: reminders,
		requests:  requests,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.cron.TagsUnique()

	if reminders != nil {
		if _, err := s.cron.Every(cfg.ReminderInterval.String()).Tag(reminderTag).Do(s.runReminders); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule reminder sweep: %w", err)
		}
	}
	if requests != nil {
		if _, err := s.cron.Every(cfg.OAuth2SweepInterval.String()).Tag(oauth2SweepTag).Do(s.sweepRequests); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule oauth2 request sweep: %w", err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.StartAsync()
	logger.Log.Info("scheduler started", "jobs", len(s.cron.Jobs()))
}

// Stop halts the scheduler and cancels any job still running.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.cancel()
	logger.Log.Info("scheduler stopped")
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(s.ctx, jobRunTimeout)
	defer cancel()
	_, _ = s.reminders.Sweep(ctx)
}

func (s *Scheduler) sweepRequests() {
	removed := s.requests.Sweep()
	if removed > 0 {
		logger.Log.Debug("expired oauth2 requests removed", "count", removed)
	}
	metrics.OAuth2PendingRequests(s.requests.Len())
}
