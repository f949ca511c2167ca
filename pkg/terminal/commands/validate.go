package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/bucket-freshness/pkg/runtime/terminal/export"
	"github.com/de-tools/bucket-freshness/pkg/services/config"
)

type ValidateCmd struct {
	env *Env
}

func NewValidateCmd(env *Env) *cobra.Command {
	vc := &ValidateCmd{env: env}
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse the check configuration without contacting storage",
		RunE:  vc.run,
	}
}

func (vc *ValidateCmd) run(cmd *cobra.Command, _ []string) error {
	path := vc.env.Settings.ConfigPath
	cfg, err := config.LoadChecks(path)
	if err != nil {
		return fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration %s is valid.\n", path)
	return export.NewConfigReporter(cmd.OutOrStdout()).Handle(cfg)
}
