package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// JobFunc is one run of a periodic job.
type JobFunc func(ctx context.Context) error

type Scheduler struct {
	jobs   map[string]*Job // job name -> job
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	log    logrus.FieldLogger
	wg     sync.WaitGroup
}

type Job struct {
	name     string
	interval time.Duration
	run      JobFunc
	ticker   *time.Ticker
	cancel   context.CancelFunc
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler(log logrus.FieldLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Stop cancels all jobs and waits for running ones to return
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler...")
	s.cancel()

	s.mu.Lock()
	for _, job := range s.jobs {
		job.ticker.Stop()
		job.cancel()
	}
	s.jobs = make(map[string]*Job)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("Scheduler stopped")
}

// AddJob runs fn every interval, replacing any job with the same name. The
// first run happens after one interval.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	// Stop existing job if it exists
	if existing, exists := s.jobs[name]; exists {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)

	job := &Job{
		name:     name,
		interval: interval,
		run:      fn,
		ticker:   time.NewTicker(interval),
		cancel:   jobCancel,
	}

	s.jobs[name] = job

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runJob(jobCtx, job)
	}()

	s.log.WithFields(logrus.Fields{"job": name, "interval": interval}).Info("Added scheduled job")
}

// RemoveJob stops a job by name
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, exists := s.jobs[name]; exists {
		job.ticker.Stop()
		job.cancel()
		delete(s.jobs, name)
		s.log.WithField("job", name).Info("Removed scheduled job")
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	defer job.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-job.ticker.C:
			s.execute(ctx, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job *Job) {
	start := time.Now()

	if err := job.run(ctx); err != nil {
		s.log.WithError(err).WithField("job", job.name).Warn("Scheduled job failed")
		return
	}

	s.log.WithFields(logrus.Fields{"job": job.name, "took": time.Since(start)}).Debug("Scheduled job finished")
}
