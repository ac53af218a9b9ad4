package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"emby-cdk-manager/internal/infra/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// JobFunc is one run of a named job. Runs of the same job may overlap.
type JobFunc func(ctx context.Context) error

const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
)

var ErrUnknownJob = errors.New("unknown job")

// Scheduler runs named jobs on any number of triggers. Every trigger of a job
// reports under the same job name.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     *zerolog.Logger

	mu      sync.Mutex
	jobs    map[string]JobFunc
	delayed []delayedRun

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type delayedRun struct {
	name  string
	delay time.Duration
}

// NewScheduler builds an idle scheduler. timeout bounds every run; zero means unbounded.
func NewScheduler(timeout time.Duration, logger *zerolog.Logger) *Scheduler {
	l := logger.With().Str("component", "Scheduler").Logger()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		timeout: timeout,
		log:     &l,
		jobs:    make(map[string]JobFunc),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register names a job. Triggers are attached afterwards.
func (s *Scheduler) Register(name string, fn JobFunc) error {
	if name == "" || fn == nil {
		return errors.New("job name and func are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	s.jobs[name] = fn
	return nil
}

// AddCron attaches a standard 5-field cron expression to a registered job.
func (s *Scheduler) AddCron(name, spec string) error {
	if _, err := s.job(name); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(s.ctx, name, spec) }); err != nil {
		return fmt.Errorf("job %q: bad schedule %q: %w", name, spec, err)
	}
	return nil
}

// AddInterval runs a registered job every d, first run one interval after Start.
func (s *Scheduler) AddInterval(name string, d time.Duration) error {
	if _, err := s.job(name); err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("job %q: interval must be positive", name)
	}
	s.cron.Schedule(cron.Every(d), cron.FuncJob(func() { s.run(s.ctx, name, TriggerInterval) }))
	return nil
}

// RunAfterStart queues one run of the job delay after Start.
func (s *Scheduler) RunAfterStart(name string, delay time.Duration) error {
	if _, err := s.job(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.delayed = append(s.delayed, delayedRun{name: name, delay: delay})
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.mu.Lock()
	delayed := s.delayed
	s.delayed = nil
	jobs := len(s.jobs)
	s.mu.Unlock()

	for _, d := range delayed {
		s.wg.Add(1)
		go func(d delayedRun) {
			defer s.wg.Done()
			t := time.NewTimer(d.delay)
			defer t.Stop()
			select {
			case <-s.ctx.Done():
			case <-t.C:
				s.run(s.ctx, d.name, TriggerStartup)
			}
		}(d)
	}
	s.log.Info().Int("jobs", jobs).Int("entries", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop cancels in-flight runs and waits for them to return, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	s.cancel()

	waited := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger runs a job synchronously on the caller's context and returns its error.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	if _, err := s.job(name); err != nil {
		return err
	}
	return s.run(ctx, name, TriggerManual)
}

func (s *Scheduler) job(name string) (JobFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return fn, nil
}

func (s *Scheduler) run(ctx context.Context, name, trigger string) (err error) {
	fn, err := s.job(name)
	if err != nil {
		return err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panic: %v", name, r)
		}
		d := time.Since(start)
		metrics.ObserveJobRun(name, trigger, d, err == nil)
		ev := s.log.Info()
		if err != nil {
			ev = s.log.Error().Err(err)
		}
		ev.Str("job", name).Str("trigger", trigger).Dur("duration", d).Msg("job run finished")
	}()
	return fn(ctx)
}
