package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper releases idle viewing sessions.
type Sweeper interface {
	SweepIdle(ttl time.Duration) int
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	schedule string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(schedule string, ttl time.Duration, sweeper Sweeper, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		sweeper:  sweeper,
		schedule: schedule,
		ttl:      ttl,
		logger:   logger,
	}
}

// Start registers the idle-session sweep and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("sweep_schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sweepIdleSessions); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepIdleSessions() {
	closed := s.sweeper.SweepIdle(s.ttl)
	if closed > 0 {
		s.logger.Info("idle sessions released", zap.Int("count", closed))
	}
}
