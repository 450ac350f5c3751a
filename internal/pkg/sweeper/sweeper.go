package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Sweeper runs registered jobs on their intervals until stopped. The
// lifecycle service itself stays request-driven; this is the periodic
// external caller that feeds the expire/notify entry points.
type Sweeper struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// New creates an empty sweeper.
func New() *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job to run at the given interval.
func (s *Sweeper) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	log.Infof("sweep job registered: %s every %s", name, interval)
}

// Start launches one goroutine per job.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.run(job)
	}
	log.Infof("sweeper started with %d job(s)", len(s.jobs))
}

// Stop cancels all jobs and waits for them to finish.
func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info("sweeper stopped")
}

func (s *Sweeper) run(job Job) {
	defer s.wg.Done()
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := job.Fn(s.ctx); err != nil {
				log.Errorf("sweep job %s failed: %v", job.Name, err)
			}
		}
	}
}
