package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"foodshare/internal/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobRunning = errors.New("job is already running")
)

// JobFunc runs one periodic job and returns its counters.
type JobFunc func(ctx context.Context) (map[string]float64, error)

// JobRecorder receives timing and counters of finished runs.
type JobRecorder interface {
	RecordJob(task string, elapsed time.Duration, fields map[string]float64)
}

type job struct {
	name string
	spec string
	run  JobFunc
	mu   sync.Mutex
}

// Scheduler runs registered jobs on their UTC cron schedules. It replaces a
// fixed ticker so each job keeps its own cadence.
type Scheduler struct {
	cron     *cron.Cron
	recorder JobRecorder
	logger   *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*job
	ctx  context.Context
}

func NewScheduler(recorder JobRecorder, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		recorder: recorder,
		logger:   logger,
		jobs:     make(map[string]*job),
		ctx:      context.Background(),
	}
}

// Add registers a job under a unique name.
func (s *Scheduler) Add(name, spec string, run JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %s already registered", name)
	}
	j := &job{name: name, spec: spec, run: run}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.execute(s.context(), j) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.jobs[name] = j
	return nil
}

// Jobs returns the registered job names with their schedules.
func (s *Scheduler) Jobs() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.jobs))
	for name, j := range s.jobs {
		out[name] = j.spec
	}
	return out
}

// Names returns the registered job names in order.
func (s *Scheduler) Names() []string {
	jobs := s.Jobs()
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow runs a job immediately, outside of its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) (map[string]float64, error) {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !j.mu.TryLock() {
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	defer j.mu.Unlock()
	return s.timed(ctx, j)
}

// Run starts the cron loop and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Strings("jobs", s.Names()))

	<-ctx.Done()

	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn("Timed out waiting for running jobs to finish")
	}
	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	if !j.mu.TryLock() {
		s.logger.Warn("Skipping job, previous run still active", zap.String("job", j.name))
		return ErrJobRunning
	}
	defer j.mu.Unlock()
	_, err := s.timed(ctx, j)
	return err
}

func (s *Scheduler) timed(ctx context.Context, j *job) (fields map[string]float64, err error) {
	log := s.logger.With(zap.String("job", j.name), zap.String("run_id", uuid.NewString()))
	timer := metrics.StartTimer()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
		elapsed := timer.Elapsed()
		if s.recorder != nil {
			s.recorder.RecordJob(j.name, elapsed, fields)
		}
		if err != nil {
			log.Error("Job failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			return
		}
		log.Info("Job finished", zap.Duration("elapsed", elapsed), zap.Any("fields", fields))
	}()

	log.Debug("Job started")
	return j.run(ctx)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
