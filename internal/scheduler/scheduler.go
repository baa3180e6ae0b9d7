package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is a background task run on a cron schedule.
type Job interface {
	Name() string
	// Schedule returns a cron spec; an empty spec registers an on-demand job.
	Schedule() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	spec := job.Schedule()
	if spec == "" {
		log.Printf("[Scheduler] %s registered as on-demand job", job.Name())
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			log.Printf("[Scheduler] %s failed: %v", job.Name(), err)
		}
	})
	if err != nil {
		return err
	}

	log.Printf("[Scheduler] %s scheduled with %q", job.Name(), spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[Scheduler] started with %d jobs", len(s.jobs))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[Scheduler] stopped")
}

// RunByName runs a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Run(ctx)
		}
	}
	log.Printf("[Scheduler] job %q not found", name)
	return nil
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
