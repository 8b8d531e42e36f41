package scheduler

import (
	"context"
	"fmt"
	"time"

	"tink/internal/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper drops expired conflict sessions
type Sweeper interface {
	SweepExpired() int
}

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  logger.Logger
}

// New creates a scheduler running the session sweep on schedule
func New(sweeper Sweeper, schedule string, log logger.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		logger:  log,
	}

	if _, err := s.cron.AddFunc(schedule, s.sweepSessions); err != nil {
		return nil, fmt.Errorf("failed to register session sweep %q: %w", schedule, err)
	}
	log.Info("Cron jobs registered", map[string]interface{}{"session_sweep": schedule})
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler; the returned context is done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepSessions() {
	removed := s.sweeper.SweepExpired()
	if removed > 0 {
		s.logger.Debug("Session sweep finished", map[string]interface{}{"removed": removed})
	}
}
