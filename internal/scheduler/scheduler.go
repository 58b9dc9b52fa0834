package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is a named recurring task. Run is invoked once per tick and must
// respect ctx cancellation.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

type Scheduler struct {
	jobs   []Job
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a recurring job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per registered job. Each job runs
// immediately, then on every tick of its interval.
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)

		go func(job Job) {
			defer s.wg.Done()

			s.runJob(job)
		}(job)
	}

	log.Printf("Scheduler started with %d jobs", len(s.jobs))
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")

	s.cancel()
	s.wg.Wait()

	log.Println("Scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	job.Run(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			job.Run(s.ctx)
		}
	}
}
