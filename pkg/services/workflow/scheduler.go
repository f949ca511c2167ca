package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

// Status describes the most recent scheduled run.
type Status struct {
	Runs          int       `json:"runs"`
	Running       bool      `json:"running"`
	LastRunAt     time.Time `json:"last_run_at,omitempty"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	LastAlerts    int       `json:"last_alerts"`
}

type SchedulerConfig struct {
	// Spec is a cron expression with a leading seconds field.
	Spec       string
	RunTimeout time.Duration
	// OnReport is called after every run that produced a report.
	OnReport func(*domain.RunReport)
}

var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler triggers the runner on a cron schedule. Runs never overlap.
type Scheduler struct {
	runner *Runner
	config SchedulerConfig
	cron   *cron.Cron

	mu     sync.RWMutex
	status Status
}

func NewScheduler(runner *Runner, config SchedulerConfig, logger zerolog.Logger) (*Scheduler, error) {
	if _, err := scheduleParser.Parse(config.Spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", config.Spec, err)
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 5 * time.Minute
	}
	l := cronLogger{logger: logger}
	s := &Scheduler{
		runner: runner,
		config: config,
		cron: cron.New(
			cron.WithParser(scheduleParser),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
	}
	return s, nil
}

// Start runs the schedule until ctx is cancelled, then waits for an in-flight
// run to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.config.Spec, func() { s.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.config.Spec, err)
	}

	zerolog.Ctx(ctx).Info().Str("schedule", s.config.Spec).Msg("scheduler started")
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	zerolog.Ctx(ctx).Info().Msg("scheduler stopped")
	return nil
}

// RunOnce performs a single run bounded by the configured timeout.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	s.status.Running = true
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	report, err := s.runner.Run(runCtx)

	s.mu.Lock()
	s.status.Runs++
	s.status.Running = false
	s.status.LastRunAt = time.Now()
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
		s.status.LastSuccessAt = s.status.LastRunAt
	}
	if report != nil {
		s.status.LastAlerts = len(report.Alerts)
	}
	s.mu.Unlock()

	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("scheduled run failed")
	}
	if report != nil && s.config.OnReport != nil {
		s.config.OnReport(report)
	}
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
