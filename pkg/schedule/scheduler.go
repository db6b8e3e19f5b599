package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"earthworks/strwriter/pkg/config"
	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/telemetry/logging"
)

// ErrUnknownJob is returned for a job name that is not scheduled.
var ErrUnknownJob = errors.New("unknown job")

// Exporter runs one export.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

// Job is one cron-driven export.
type Job struct {
	Name    string
	Cron    string
	Request export.Request
}

// JobsFromConfig builds jobs from the schedule section, filling unset
// request fields from the export section.
func JobsFromConfig(cfg *config.Config) []Job {
	jobs := make([]Job, 0, len(cfg.Schedule.Jobs))
	for _, jc := range cfg.Schedule.Jobs {
		jobs = append(jobs, Job{
			Name: jc.Name,
			Cron: jc.Cron,
			Request: export.Request{
				Layer:     jc.Layer,
				TargetCRS: orDefault(jc.TargetCRS, cfg.Export.TargetCRS),
				Field:     orDefault(jc.AttributeField, cfg.Export.AttributeField),
				DefaultZ:  orDefault(jc.DefaultZ, cfg.Export.DefaultZ),
				Output:    jc.Output,
				Trigger:   export.TriggerSchedule,
			},
		})
	}
	return jobs
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// Scheduler runs export jobs on their cron schedules. Jobs never overlap;
// a job that fires while another is exporting waits for it.
type Scheduler struct {
	exporter Exporter
	jobs     []Job
	cron     *cron.Cron
	entries  map[string]cron.EntryID
	logger   *logging.Logger
	notify   func(Job, *export.Result, error)

	mu      sync.Mutex
	runMu   sync.Mutex
	running bool
}

// NewScheduler creates a scheduler for jobs.
func NewScheduler(exporter Exporter, jobs []Job, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.FromSlog(nil)
	}
	return &Scheduler{
		exporter: exporter,
		jobs:     jobs,
		cron:     cron.New(),
		entries:  make(map[string]cron.EntryID, len(jobs)),
		logger:   logger.With("component", "schedule"),
	}
}

// OnResult registers a callback invoked after every job run.
func (s *Scheduler) OnResult(fn func(Job, *export.Result, error)) {
	s.notify = fn
}

// Jobs returns the configured jobs.
func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// Start validates every cron expression and begins running the jobs. No
// job is scheduled unless all expressions parse. With no jobs the scheduler
// does nothing.
//
// Common cron expressions:
//   - "0 6 * * *"     - Daily at 6 AM
//   - "*/15 * * * *"  - Every 15 minutes
//   - "0 18 * * 1-5"  - Weekdays at 6 PM
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if len(s.jobs) == 0 {
		s.logger.Info("no export jobs configured, skipping scheduler")
		return nil
	}

	for _, job := range s.jobs {
		if _, err := cron.ParseStandard(job.Cron); err != nil {
			return fmt.Errorf("invalid cron schedule %q for job %s: %w", job.Cron, job.Name, err)
		}
	}

	for _, job := range s.jobs {
		job := job
		id, err := s.cron.AddFunc(job.Cron, func() {
			s.run(ctx, job)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", job.Name, err)
		}
		s.entries[job.Name] = id
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("export scheduler started", "jobs", len(s.jobs))
	for _, job := range s.jobs {
		s.logger.Info("export job scheduled",
			"job", job.Name,
			"cron", job.Cron,
			"layer", job.Request.Layer,
			"next_run", s.cron.Entry(s.entries[job.Name]).Next,
		)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow runs the named job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*export.Result, error) {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.run(ctx, job)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
}

// run executes one job.
func (s *Scheduler) run(ctx context.Context, job Job) (*export.Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.logger.Info("starting scheduled export", "job", job.Name, "layer", job.Request.Layer)

	res, err := s.exporter.Export(ctx, job.Request)
	if s.notify != nil {
		s.notify(job, res, err)
	}
	if err != nil {
		s.logger.Error("scheduled export failed",
			"job", job.Name,
			"error", err,
		)
		return res, err
	}

	s.logger.Info("scheduled export completed",
		"job", job.Name,
		"path", res.Path,
	)
	return res, nil
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("export scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next run time of the named job, or nil when the job
// is not scheduled.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok || !s.running {
		return nil
	}

	next := s.cron.Entry(id).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// Validate checks every job's cron expression without scheduling anything.
func Validate(jobs []Job) error {
	var errs []error
	for _, job := range jobs {
		if _, err := cron.ParseStandard(job.Cron); err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", job.Name, err))
		}
	}
	return errors.Join(errs...)
}
