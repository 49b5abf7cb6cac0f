/**
 * @description
 * Cron scheduler setup for the reconciliation jobs.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig holds the cron expressions for the three cadences.
type SchedulerConfig struct {
	HealthSweepSchedule   string
	DailySweepSchedule    string
	WeeklySummarySchedule string
}

// Scheduler manages the recurring reconciliation jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config SchedulerConfig
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg SchedulerConfig) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.HealthSweepSchedule, s.jobs.RunHealthSweep); err != nil {
		s.logger.Error("failed to schedule health sweep", "error", err)
	} else {
		s.logger.Info("scheduled health sweep", "schedule", s.config.HealthSweepSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.DailySweepSchedule, s.jobs.RunDailySweep); err != nil {
		s.logger.Error("failed to schedule daily sweep", "error", err)
	} else {
		s.logger.Info("scheduled daily sweep", "schedule", s.config.DailySweepSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.WeeklySummarySchedule, s.jobs.RunWeeklySummary); err != nil {
		s.logger.Error("failed to schedule weekly summary", "error", err)
	} else {
		s.logger.Info("scheduled weekly summary", "schedule", s.config.WeeklySummarySchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
