package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/bucket-freshness/pkg/metrics"
	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/de-tools/bucket-freshness/pkg/services/freshness"
)

var ErrNoConfiguration = errors.New("no check configuration")

// ConfigLoader yields the check configuration for one run.
type ConfigLoader func(ctx context.Context) (*domain.Configuration, error)

// Notifier publishes the alerts of a run, at most once.
type Notifier interface {
	Notify(ctx context.Context, alerts []domain.Alert) (string, error)
}

const defaultPublishTimeout = 30 * time.Second

type Runner struct {
	loadConfig     ConfigLoader
	evaluator      freshness.Evaluator
	notifier       Notifier
	metrics        *metrics.Recorder
	now            func() time.Time
	publishTimeout time.Duration
}

type RunnerOption func(*Runner)

func WithMetrics(rec *metrics.Recorder) RunnerOption {
	return func(r *Runner) { r.metrics = rec }
}

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithPublishTimeout bounds the publish that follows an interrupted run.
func WithPublishTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.publishTimeout = d }
}

func NewRunner(
	loadConfig ConfigLoader,
	evaluator freshness.Evaluator,
	notifier Notifier,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		loadConfig:     loadConfig,
		evaluator:      evaluator,
		notifier:       notifier,
		now:            time.Now,
		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one pass: load the configuration, check every prefix in order
// and publish a single notification when any check is not fresh. When the
// configuration cannot be loaded no check runs and nothing is published.
// When ctx ends mid-pass the remaining checks are reported as errors and the
// collected alerts are still published, bounded by the publish timeout.
func (r *Runner) Run(ctx context.Context) (report *domain.RunReport, err error) {
	logger := zerolog.Ctx(ctx)
	started := r.now()
	defer func() {
		finished := r.now()
		if report != nil {
			report.FinishedAt = finished
		}
		r.metrics.ObserveRun(finished.Sub(started), finished, err)
	}()

	cfg, err := r.loadConfig(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("error reading config file")
		return nil, fmt.Errorf("%w: %w", ErrNoConfiguration, err)
	}
	if cfg == nil {
		logger.Error().Msg("error reading config file")
		return nil, ErrNoConfiguration
	}

	logger.Info().
		Time("started_at", started).
		Int("buckets", len(cfg.Buckets)).
		Int("checks", cfg.CheckCount()).
		Msg("start checking")

	report = &domain.RunReport{StartedAt: started}
	var interrupted error
	for _, bucket := range cfg.Buckets {
		for _, check := range bucket.Checks {
			if interrupted == nil && ctx.Err() != nil {
				interrupted = fmt.Errorf("run interrupted: %w", ctx.Err())
				logger.Error().Err(interrupted).Msg("run interrupted, reporting remaining checks as errors")
			}

			var res domain.CheckResult
			if interrupted != nil {
				res = domain.CheckResult{
					Bucket:            bucket.Bucket,
					Prefix:            check.Prefix,
					RecencyWindowDays: check.RecencyWindowDays,
					Outcome:           domain.OutcomeError,
					Err:               fmt.Errorf("not checked: %w", interrupted),
				}
			} else {
				// Listing errors are carried in the result and reported as alerts.
				res, _ = r.evaluator.CheckFilesUploaded(ctx, bucket.Bucket, check.Prefix, check.RecencyWindowDays)
			}
			report.Results = append(report.Results, res)
			r.metrics.ObserveCheck(res)

			if alert, ok := domain.NewAlert(res); ok {
				report.Alerts = append(report.Alerts, alert)
			}
		}
	}
	if interrupted == nil && ctx.Err() != nil {
		interrupted = fmt.Errorf("run interrupted: %w", ctx.Err())
	}

	notifyCtx := ctx
	if interrupted != nil {
		// Alerts collected so far are still published after the run deadline.
		var cancel context.CancelFunc
		notifyCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), r.publishTimeout)
		defer cancel()
	}

	messageID, err := r.notifier.Notify(notifyCtx, report.Alerts)
	if len(report.Alerts) > 0 {
		r.metrics.ObservePublish(err)
	}
	if err != nil {
		return report, errors.Join(interrupted, err)
	}
	report.MessageID = messageID

	logger.Info().
		Int("fresh", report.Count(domain.OutcomeFresh)).
		Int("stale", report.Count(domain.OutcomeStale)).
		Int("errors", report.Count(domain.OutcomeError)).
		Msg("done checking")
	if interrupted != nil {
		return report, interrupted
	}
	return report, nil
}
