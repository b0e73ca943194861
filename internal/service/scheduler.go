package service

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/strategy"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/utils"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
)

var ErrJobNotFound = errors.New("job not found")

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	Jobs() []strategy.Job
	RunJob(ctx context.Context, name string) error
}

type schedulerService struct {
	cfg          *config.Config
	log          *logger.Logger
	cron         *cron.Cron
	taskExecutor TaskExecutor
	jobs         map[string]strategy.Job
	semaphore    chan struct{}

	mu      sync.Mutex
	rootCtx context.Context
	started bool
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	taskExecutor TaskExecutor,
) SchedulerService {
	maxConcurrency := cfg.Scheduler.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	jobs := make(map[string]strategy.Job, len(cfg.Scheduler.Jobs))
	for _, j := range cfg.Scheduler.Jobs {
		job, err := strategy.JobFromConfig(j)
		if err != nil {
			log.Error("Skipping invalid scheduled job", logger.ErrorField(err), logger.StringField("job_name", j.Name))
			continue
		}
		jobs[job.Name] = job
	}

	c := cron.New(
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithLogger(cronLogger{log: log}),
	)

	return &schedulerService{
		cfg:          cfg,
		log:          log,
		cron:         c,
		taskExecutor: taskExecutor,
		jobs:         jobs,
		semaphore:    make(chan struct{}, maxConcurrency),
		rootCtx:      context.Background(),
	}
}

// Start registers every job with a cron expression and starts the cron loop. Jobs
// without an expression can still be triggered through RunJob.
func (s *schedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.rootCtx = ctx

	for _, job := range s.Jobs() {
		job := job
		if job.Cron == "" {
			continue
		}
		if _, err := s.cron.AddFunc(job.Cron, func() { s.run(ctx, job, TriggerCron) }); err != nil {
			return fmt.Errorf("failed to schedule job %s (%q): %w", job.Name, job.Cron, err)
		}
		s.log.Info("Job scheduled",
			logger.StringField("job_name", job.Name),
			logger.StringField("job_type", string(job.Type)),
			logger.StringField("cron", job.Cron))
	}

	s.cron.Start()
	s.started = true
	s.log.Info("Scheduler started",
		logger.IntField("jobs", len(s.cron.Entries())),
		logger.IntField("max_concurrency", cap(s.semaphore)))
	return nil
}

// Stop waits for running cron callbacks to return.
func (s *schedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
	s.log.Info("Scheduler stopped")
}

// Jobs returns the configured jobs sorted by name.
func (s *schedulerService) Jobs() []strategy.Job {
	jobs := make([]strategy.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// RunJob triggers name in the background and returns immediately.
func (s *schedulerService) RunJob(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.log.InfoContext(ctx, "Running job task", logger.StringField("job_name", name))
	s.mu.Lock()
	root := s.rootCtx
	s.mu.Unlock()

	utils.GoSafe(s.log, func() {
		s.run(root, job, TriggerManual)
	})
	return nil
}

func (s *schedulerService) run(ctx context.Context, job strategy.Job, trigger string) {
	select {
	case s.semaphore <- struct{}{}:
	case <-ctx.Done():
		s.log.WarnContext(ctx, "Job execution cancelled before start", logger.StringField("job_name", job.Name))
		return
	}
	defer func() { <-s.semaphore }()

	s.log.DebugContext(ctx, "Executing job",
		logger.StringField("job_name", job.Name),
		logger.StringField("trigger", trigger),
		logger.IntField("active_concurrency", len(s.semaphore)),
		logger.IntField("max_concurrency", cap(s.semaphore)))

	if _, err := s.taskExecutor.Execute(ctx, job, trigger); err != nil {
		s.log.ErrorContextWithAlert(ctx, "Failed to execute job",
			logger.ErrorField(err),
			logger.StringField("job_name", job.Name),
			logger.StringField("job_type", string(job.Type)))
		return
	}
	s.log.InfoContext(ctx, "Job execution completed", logger.StringField("job_name", job.Name))
}

// cronLogger routes robfig/cron's internal logging into zap.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, logger.Field("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, logger.ErrorField(err), logger.Field("details", keysAndValues))
}
