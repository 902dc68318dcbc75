// Package scheduler drives the recurring import jobs. One background
// goroutine wakes on a fixed poll interval and runs due job bodies
// synchronously, so a slow fetch delays later due jobs until it returns.
// Per-job-type exclusivity comes from the shared run guard, which the
// on-demand trigger path also goes through.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cdrp-labs/disaster-ingest/internal/observability"
	"github.com/cdrp-labs/disaster-ingest/internal/pipeline"
)

const stopTimeout = 5 * time.Second

type JobFunc func(ctx context.Context)

type job struct {
	name     string
	interval time.Duration
	next     time.Time
	fn       JobFunc
}

type Scheduler struct {
	clock   clockwork.Clock
	poll    time.Duration
	guard   *pipeline.RunGuard
	metrics *observability.Metrics

	mu      sync.Mutex
	jobs    []*job
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(clock clockwork.Clock, pollInterval time.Duration, guard *pipeline.RunGuard, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		clock:   clock,
		poll:    pollInterval,
		guard:   guard,
		metrics: metrics,
	}
}

// Register adds a named job. Each job type runs at most once concurrently;
// its first execution is one full interval after Start.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{
		name:     name,
		interval: interval,
		fn:       fn,
	})
}

// Start launches the tick loop. Starting an already-running scheduler is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Warn("scheduler already running")
		return
	}

	now := s.clock.Now()
	for _, j := range s.jobs {
		j.next = now.Add(j.interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.metrics.SchedulerRunning.Set(1)

	go s.run(ctx, s.done)

	slog.Info("scheduler started", "jobs", len(s.jobs), "poll_interval", s.poll)
}

// Stop prevents future ticks, waits briefly for the current tick to finish,
// and clears pending due-times. In-flight job bodies are not cancelled.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		slog.Warn("scheduler stop timed out waiting for current tick")
	}

	s.mu.Lock()
	for _, j := range s.jobs {
		j.next = time.Time{}
	}
	s.mu.Unlock()

	s.metrics.SchedulerRunning.Set(0)
	slog.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.runDue(ctx)
		}
	}
}

func (s *Scheduler) runDue(ctx context.Context) {
	now := s.clock.Now()

	s.mu.Lock()
	due := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if !j.next.IsZero() && !now.Before(j.next) {
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		if ctx.Err() != nil {
			return
		}
		// A held guard means a run of this type is in flight (likely an
		// on-demand trigger); retry next tick without moving the due time.
		if !s.guard.TryAcquire(j.name) {
			s.metrics.JobRuns.WithLabelValues(j.name, "skipped").Inc()
			slog.Debug("job skipped, run already in progress", "job", j.name)
			continue
		}

		s.runJob(ctx, j)
		s.guard.Release(j.name)

		s.mu.Lock()
		j.next = s.clock.Now().Add(j.interval)
		s.mu.Unlock()
	}
}

// runJob executes one job body, containing panics so a failing job never
// halts the loop or other job types.
func (s *Scheduler) runJob(ctx context.Context, j *job) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.JobRuns.WithLabelValues(j.name, "panic").Inc()
			slog.Error("scheduled job panicked", "job", j.name, "panic", r)
		}
	}()

	slog.Info("running scheduled job", "job", j.name)
	j.fn(ctx)
	s.metrics.JobRuns.WithLabelValues(j.name, "ok").Inc()
}
