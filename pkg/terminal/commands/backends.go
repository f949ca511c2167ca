package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type BackendsCmd struct {
	env *Env
}

func NewBackendsCmd(env *Env) *cobra.Command {
	bc := &BackendsCmd{env: env}
	return &cobra.Command{
		Use:   "backends",
		Short: "List supported storage backends",
		RunE:  bc.run,
	}
}

func (bc *BackendsCmd) run(cmd *cobra.Command, _ []string) error {
	backends := bc.env.Registry.ListBackends()
	if len(backends) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No storage backends registered")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Supported storage backends:\n%s\n", strings.Join(backends, "\n"))
	return nil
}
