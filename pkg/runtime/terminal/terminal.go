package terminal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/de-tools/bucket-freshness/pkg/logging"
	"github.com/de-tools/bucket-freshness/pkg/services/config"
	"github.com/de-tools/bucket-freshness/pkg/store/objectstore"
	"github.com/de-tools/bucket-freshness/pkg/terminal/commands"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	output  io.Writer
	rootCmd *cobra.Command

	envFile    string
	configPath string
}

// Options contain configuration for the CLI
type Options struct {
	Registry objectstore.Registry
	Output   io.Writer
	// LogOutput defaults to stderr so reports on Output stay readable.
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	cli := &CLI{
		env:    &commands.Env{Registry: opts.Registry},
		output: opts.Output,
	}

	cli.rootCmd = cli.newRootCmd(opts.LogOutput)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd(logOutput io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "freshness",
		Short:         "Alert when configured bucket prefixes stop receiving backups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cli.loadEnv(cmd, logOutput)
		},
	}
	cmd.SetOut(cli.output)

	cmd.PersistentFlags().StringVar(&cli.envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to the check configuration (overrides CONFIG_PATH)")

	cmd.AddCommand(commands.NewRunCmd(cli.env))
	cmd.AddCommand(commands.NewScheduleCmd(cli.env))
	cmd.AddCommand(commands.NewValidateCmd(cli.env))
	cmd.AddCommand(commands.NewBackendsCmd(cli.env))

	return cmd
}

func (cli *CLI) loadEnv(cmd *cobra.Command, logOutput io.Writer) error {
	if cli.envFile != "" {
		if err := godotenv.Load(cli.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", cli.envFile, err)
		}
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if cli.configPath != "" {
		settings.ConfigPath = cli.configPath
	}

	logger := logging.New(logging.Config{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		Output: logOutput,
	})

	cli.env.Settings = settings
	cli.env.Logger = logger
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}
