package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

const namespace = "bucket_freshness"

// Recorder owns the checker's metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	checksTotal      *prometheus.CounterVec
	alertsPublished  prometheus.Counter
	publishFailures  prometheus.Counter
	runDuration      prometheus.Histogram
	runsTotal        *prometheus.CounterVec
	lastSuccessfulAt prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "check",
				Name:      "results_total",
				Help:      "Total number of prefix checks by outcome",
			},
			[]string{"bucket", "outcome"},
		),
		alertsPublished: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "published_total",
				Help:      "Total number of alert notifications published",
			},
		),
		publishFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "failures_total",
				Help:      "Total number of failed alert notifications",
			},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Duration of a full pass over the configuration",
				Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "total",
				Help:      "Total number of runs by status",
			},
			[]string{"status"},
		),
		lastSuccessfulAt: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last run that completed without error",
			},
		),
	}
}

func (r *Recorder) ObserveCheck(res domain.CheckResult) {
	if r == nil {
		return
	}
	r.checksTotal.WithLabelValues(res.Bucket, string(res.Outcome)).Inc()
}

func (r *Recorder) ObservePublish(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.publishFailures.Inc()
		return
	}
	r.alertsPublished.Inc()
}

// ObserveRun records a finished run. finishedAt is used for the success gauge.
func (r *Recorder) ObserveRun(duration time.Duration, finishedAt time.Time, err error) {
	if r == nil {
		return
	}
	r.runDuration.Observe(duration.Seconds())
	if err != nil {
		r.runsTotal.WithLabelValues("failed").Inc()
		return
	}
	r.runsTotal.WithLabelValues("succeeded").Inc()
	r.lastSuccessfulAt.Set(float64(finishedAt.Unix()))
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Push sends the current metrics to a Pushgateway under the given job name.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
