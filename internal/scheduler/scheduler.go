package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a batch run that the scheduler re-executes on a fixed interval.
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler periodically re-runs a full collection. Runs stay strictly
// sequential; gocron's singleton mode prevents an overlapping run when a
// collection outlasts the interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	interval  time.Duration
}

// New creates a Scheduler around the given job.
func New(job Job, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 24 * 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(func() {
		log.Println("scheduler: running collection job")

		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		if err := s.job.Run(ctx); err != nil {
			log.Printf("scheduler: collection run failed: %v", err)
		}
		log.Println("scheduler: completed collection job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
