package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Job names
const (
	JobFixtureSync     = "fixture-sync"
	JobSettlementSweep = "settlement-sweep"
)

// JobFunc is one run of a periodic task
type JobFunc func(ctx context.Context) error

// Observer records the outcome of each job run
type Observer interface {
	ObserveJob(job string, elapsed time.Duration, err error)
}

// Scheduler runs periodic jobs. A job whose previous run is still in
// progress is skipped rather than started twice.
type Scheduler struct {
	cron     *cron.Cron
	chain    cron.Chain
	jobs     map[string]cron.Job
	ctx      context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	observer Observer
	running  sync.WaitGroup
}

// New creates a scheduler whose job contexts derive from ctx and expire after timeout
func New(ctx context.Context, timeout time.Duration, observer Observer) *Scheduler {
	logger := cronLogger{entry: log.WithField("component", "scheduler")}
	ctx, cancel := context.WithCancel(ctx)

	return &Scheduler{
		cron:     cron.New(),
		chain:    cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		jobs:     make(map[string]cron.Job),
		ctx:      ctx,
		cancel:   cancel,
		timeout:  timeout,
		observer: observer,
	}
}

// Every registers fn to run every interval
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s is already scheduled", name)
	}

	job := s.chain.Then(s.wrap(name, fn))
	if _, err := s.cron.AddJob(fmt.Sprintf("@every %s", interval), job); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.jobs[name] = job
	log.WithFields(log.Fields{
		"job":      name,
		"interval": interval,
	}).Info("Job scheduled")
	return nil
}

// RunNow triggers a scheduled job once in the background. It is skipped
// like a timer tick when the job is already running.
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %s is not scheduled", name)
	}
	go job.Run()
	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	s.cancel()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) wrap(name string, fn JobFunc) cron.Job {
	return cron.FuncJob(func() {
		s.running.Add(1)
		defer s.running.Done()

		if s.ctx.Err() != nil {
			return
		}

		ctx := s.ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		err := fn(ctx)
		elapsed := time.Since(start)

		if s.observer != nil {
			s.observer.ObserveJob(name, elapsed, err)
		}

		entry := log.WithFields(log.Fields{
			"job":      name,
			"duration": elapsed,
		})
		if err != nil {
			entry.WithError(err).Error("Job failed")
			return
		}
		entry.Debug("Job completed")
	})
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	entry *log.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
