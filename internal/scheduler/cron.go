package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// refreshTimeout bounds one background refresh
const refreshTimeout = 2 * time.Minute

// Refresher reloads the collection without user-visible side effects
type Refresher interface {
	RefreshSilent(ctx context.Context)
}

// Authorizer reports whether a session is active and can pick up a session
// remembered by another process
type Authorizer interface {
	Active() bool
	Restore(ctx context.Context) bool
}

// Scheduler runs the background silent refresh
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	store    Refresher
	auth     Authorizer
	logger   *logrus.Logger
}

// NewScheduler creates a scheduler refreshing store on schedule (standard cron syntax)
func NewScheduler(schedule string, store Refresher, auth Authorizer, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		store:    store,
		auth:     auth,
		logger:   logger,
	}
}

// Start starts the scheduler and runs an initial refresh
func (s *Scheduler) Start() error {
	s.logger.WithField("schedule", s.schedule).Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.schedule, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	go s.runRefresh()

	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runRefresh executes one silent refresh if a session is active or can be restored
func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if !s.auth.Active() && !s.auth.Restore(ctx) {
		s.logger.Debug("No active session, skipping background refresh")
		return
	}

	s.logger.Debug("Running background refresh")

	s.store.RefreshSilent(ctx)
}
