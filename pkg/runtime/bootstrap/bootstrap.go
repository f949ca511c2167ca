package bootstrap

import (
	"context"
	"fmt"

	"github.com/de-tools/bucket-freshness/pkg/metrics"
	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/de-tools/bucket-freshness/pkg/services/alerting"
	"github.com/de-tools/bucket-freshness/pkg/services/config"
	"github.com/de-tools/bucket-freshness/pkg/services/freshness"
	"github.com/de-tools/bucket-freshness/pkg/services/workflow"
	miniostore "github.com/de-tools/bucket-freshness/pkg/store/minio"
	"github.com/de-tools/bucket-freshness/pkg/store/objectstore"
	s3store "github.com/de-tools/bucket-freshness/pkg/store/s3"
)

const MetricsJob = "bucket-freshness"

// App holds the clients and services built once per process.
type App struct {
	Settings *config.Settings
	Runner   *workflow.Runner
	Metrics  *metrics.Recorder
}

func DefaultRegistry() objectstore.Registry {
	return objectstore.NewRegistry(map[string]objectstore.Factory{
		config.BackendS3:    s3store.Factory,
		config.BackendMinIO: miniostore.Factory,
	})
}

// FileLoader reads the check configuration from path on every run.
func FileLoader(path string) workflow.ConfigLoader {
	return func(context.Context) (*domain.Configuration, error) {
		return config.LoadChecks(path)
	}
}

// Build constructs the storage lister, publisher, checker and runner
// described by settings.
func Build(ctx context.Context, settings *config.Settings, registry objectstore.Registry) (*App, error) {
	if err := settings.ValidateDelivery(); err != nil {
		return nil, err
	}

	lister, err := registry.Create(ctx, settings.StorageBackend, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	publisher, err := alerting.NewPublisher(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	mode, err := freshness.ParseCutoffMode(settings.CutoffMode)
	if err != nil {
		return nil, err
	}

	checker := freshness.NewChecker(lister, freshness.Options{
		Location: settings.Location(),
		Mode:     mode,
	})

	rec := metrics.NewRecorder()
	runner := workflow.NewRunner(
		FileLoader(settings.ConfigPath),
		checker,
		alerting.NewNotifier(publisher),
		workflow.WithMetrics(rec),
	)

	return &App{
		Settings: settings,
		Runner:   runner,
		Metrics:  rec,
	}, nil
}
