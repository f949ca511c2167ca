package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/de-tools/bucket-freshness/pkg/runtime/bootstrap"
	"github.com/de-tools/bucket-freshness/pkg/runtime/terminal/export"
	"github.com/de-tools/bucket-freshness/pkg/server"
	"github.com/de-tools/bucket-freshness/pkg/services/workflow"
)

type ScheduleCmd struct {
	env    *Env
	runNow bool
}

func NewScheduleCmd(env *Env) *cobra.Command {
	sc := &ScheduleCmd{env: env}
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the check on a cron schedule and serve /healthz and /metrics",
		RunE:  sc.run,
	}

	cmd.Flags().BoolVar(&sc.runNow, "run-now", false, "Run once immediately before waiting for the schedule")

	return cmd
}

func (sc *ScheduleCmd) run(cmd *cobra.Command, _ []string) error {
	settings := sc.env.Settings
	logger := sc.env.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, settings, sc.env.Registry)
	if err != nil {
		return err
	}

	reporter := export.NewReporter(cmd.OutOrStdout())
	scheduler, err := workflow.NewScheduler(app.Runner, workflow.SchedulerConfig{
		Spec:       settings.Schedule,
		RunTimeout: settings.RunTimeout,
		OnReport: func(report *domain.RunReport) {
			if err := reporter.Handle(report); err != nil {
				logger.Error().Err(err).Msg("failed to print report")
			}
		},
	}, logger)
	if err != nil {
		return err
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr: settings.ListenAddr,
		Dependencies: server.Dependencies{
			Status:  scheduler,
			Metrics: app.Metrics.Handler(),
		},
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- api.Start(ctx)
	}()

	if sc.runNow {
		scheduler.RunOnce(ctx)
	}

	schedErr := make(chan error, 1)
	go func() {
		schedErr <- scheduler.Start(ctx)
	}()

	select {
	case err = <-serverErr:
		cancel()
		<-schedErr
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case err = <-schedErr:
		cancel()
		<-serverErr
		return err
	}
}
