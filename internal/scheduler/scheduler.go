package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"MarketPulse/pkg/logger"
)

// Job is a named unit of scheduled work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives the ingestion cycles on fixed intervals. A job that
// returns an error is logged and retried on its next tick; panics are
// recovered by the cron chain so one bad cycle cannot kill the process.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
	ctx  context.Context
}

func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		log:  log,
		ctx:  context.Background(),
	}
}

// Register adds a job at its interval. Must be called before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	spec := fmt.Sprintf("@every %s", job.Interval)
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job.Run(s.ctx); err != nil {
			s.log.Error("scheduled job failed",
				logger.String("job", job.Name),
				logger.Duration("elapsed", time.Since(start)),
				logger.Error(err))
			return
		}
		s.log.Debug("scheduled job done",
			logger.String("job", job.Name),
			logger.Duration("elapsed", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("register job %s: %w", job.Name, err)
	}
	return nil
}

// Start launches the cron loop. Jobs inherit ctx for cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
