package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"github.com/de-tools/bucket-freshness/pkg/logging"
	"github.com/de-tools/bucket-freshness/pkg/runtime/bootstrap"
	"github.com/de-tools/bucket-freshness/pkg/services/config"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
	})

	// Clients are built once per container and reused across invocations.
	app, err := bootstrap.Build(logger.WithContext(context.Background()), settings, bootstrap.DefaultRegistry())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise checker")
	}

	lambda.Start(newHandler(app, logger))
}

// newHandler ignores the triggering event; every invocation is one full run.
func newHandler(app *bootstrap.App, logger zerolog.Logger) func(context.Context, json.RawMessage) error {
	return func(ctx context.Context, _ json.RawMessage) error {
		ctx = logger.WithContext(ctx)

		report, err := app.Runner.Run(ctx)
		if err != nil {
			return err
		}

		logger.Info().
			Int("checks", len(report.Results)).
			Int("alerts", len(report.Alerts)).
			Str("message_id", report.MessageID).
			Msg("run finished")

		if url := app.Settings.PushgatewayURL; url != "" {
			if err := app.Metrics.Push(ctx, url, bootstrap.MetricsJob); err != nil {
				logger.Warn().Err(err).Msg("failed to push metrics")
			}
		}
		return nil
	}
}
