package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/bucket-freshness/pkg/runtime/bootstrap"
	"github.com/de-tools/bucket-freshness/pkg/runtime/terminal/export"
)

type RunCmd struct {
	env   *Env
	quiet bool
}

func NewRunCmd(env *Env) *cobra.Command {
	rc := &RunCmd{env: env}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every configured prefix once and alert on stale backups",
		RunE:  rc.run,
	}

	cmd.Flags().BoolVarP(&rc.quiet, "quiet", "q", false, "Do not print the result table")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	settings := rc.env.Settings
	ctx, cancel := context.WithTimeout(cmd.Context(), settings.RunTimeout)
	defer cancel()

	app, err := bootstrap.Build(ctx, settings, rc.env.Registry)
	if err != nil {
		return err
	}

	report, runErr := app.Runner.Run(ctx)
	if report != nil && !rc.quiet {
		if err := export.NewReporter(cmd.OutOrStdout()).Handle(report); err != nil {
			rc.env.Logger.Error().Err(err).Msg("failed to print report")
		}
	}

	if settings.PushgatewayURL != "" {
		if err := app.Metrics.Push(ctx, settings.PushgatewayURL, bootstrap.MetricsJob); err != nil {
			rc.env.Logger.Warn().Err(err).Msg("failed to push metrics")
		}
	}

	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}
