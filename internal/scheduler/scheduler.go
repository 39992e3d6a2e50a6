package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/skywx/bluesky-weather-poster/internal/poster"
	"github.com/skywx/bluesky-weather-poster/internal/schedule"
)

// Scheduler runs the posting service on the configured cadence. The first
// execution is anchored at the spec's hour:minute grid, so reschedules never
// drift off the user's chosen posting times.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *poster.Service
	spec      schedule.Spec
	timeout   time.Duration
}

func New(service *poster.Service, spec schedule.Spec, jobTimeout time.Duration) *Scheduler {
	loc := spec.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		service:   service,
		spec:      spec,
		timeout:   jobTimeout,
	}
}

// Start schedules the recurring posting job and starts the underlying
// scheduler asynchronously.
func (s *Scheduler) Start() error {
	first := schedule.NextRun(s.spec, time.Now())
	log.Printf("scheduler: first post at %s, then every %dh", first.Format(time.RFC3339), s.spec.FrequencyHours)

	_, err := s.scheduler.Every(s.spec.FrequencyHours).Hours().StartAt(first).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		run, err := s.service.RunNow(ctx)
		if err != nil {
			log.Printf("scheduler: posting run failed: %v", err)
			return
		}
		if run.Skipped {
			log.Printf("scheduler: posting run skipped: %s", run.Reason)
			return
		}
		for label, res := range run.Results {
			if res.Success {
				log.Printf("scheduler: %s posted: %s", label, res.Detail)
			}
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler and cancels future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
