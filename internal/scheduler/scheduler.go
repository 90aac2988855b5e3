// Package scheduler runs a job once immediately and then on a fixed interval.
//
// Ticks that fire while the previous run is still in progress are skipped, so at most
// one run is ever in flight.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/titulos-monitor/titulos-monitor/internal/logger"
)

// Job is the scheduled work. ctx is canceled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler wraps a cron instance holding a single fixed-interval entry
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	job      Job

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

// New creates a scheduler for job. Intervals are rounded down to whole seconds
// with a one second minimum.
func New(interval time.Duration, job Job) *Scheduler {
	log := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		interval: interval,
		job:      job,
	}
}

// Start runs the job synchronously, then arms the timer. Cancelling parent stops
// future runs and cancels the context handed to the job.
func (s *Scheduler) Start(parent context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(parent)
	s.mu.Unlock()

	s.job(s.ctx)

	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.job(s.ctx)
	}))
	s.cron.Start()

	logger.Info("Scheduler started", logger.Fields{"interval": s.interval.String()})
	return nil
}

// Stop prevents further runs and cancels the running job's context. It waits for the
// running job to return or for ctx to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
		logger.Info("Scheduler stopped", nil)
	case <-ctx.Done():
		logger.Warn("Scheduler stop timed out with a run still in progress", nil)
	}
}

// cronLogger forwards cron's internal logging to the package logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, toFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, toFields(keysAndValues), err)
}

func toFields(keysAndValues []interface{}) logger.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
