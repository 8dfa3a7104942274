package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"

	"github.com/robfig/cron/v3"
)

const (
	JobExpireOverdue   = "expire_overdue"
	JobExpiryReminders = "expiry_reminders"

	jobTimeout = 5 * time.Minute
)

// Subscriptions is the slice of subscription.Service the jobs drive.
type Subscriptions interface {
	ExpireOverdue(ctx context.Context) (int, error)
	SendExpiryReminders(ctx context.Context) (int, error)
}

type Schedules struct {
	ExpireOverdue   string
	ExpiryReminders string
}

type Scheduler struct {
	cron          *cron.Cron
	subscriptions Subscriptions
	schedules     Schedules
}

func New(subscriptions Subscriptions, schedules Schedules) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.L().Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))

	return &Scheduler{
		cron:          c,
		subscriptions: subscriptions,
		schedules:     schedules,
	}
}

// Start registers both jobs and starts the cron loop. A job with an invalid
// or empty schedule is logged and skipped; the other still runs.
func (s *Scheduler) Start() {
	s.add(JobExpireOverdue, s.schedules.ExpireOverdue, s.ExpireOverdue)
	s.add(JobExpiryReminders, s.schedules.ExpiryReminders, s.SendExpiryReminders)
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries reports how many jobs were registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) add(name, spec string, fn func()) {
	if spec == "" {
		logger.Warn("job disabled: empty schedule", "job", name)
		return
	}
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		logger.Error("failed to schedule job", "job", name, "schedule", spec, "error", err)
		return
	}
	logger.Info("scheduled job", "job", name, "schedule", spec)
}

func (s *Scheduler) ExpireOverdue() {
	s.run(JobExpireOverdue, s.subscriptions.ExpireOverdue)
}

func (s *Scheduler) SendExpiryReminders() {
	s.run(JobExpiryReminders, s.subscriptions.SendExpiryReminders)
}

func (s *Scheduler) run(name string, job func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := job(ctx)
	if err != nil {
		metrics.RecordJobRun(name, "error")
		logger.Error("job failed", "job", name, "error", err)
		return
	}

	metrics.RecordJobRun(name, "ok")
	logger.Info("job finished", "job", name, "affected", n, "duration", time.Since(start).String())
}
