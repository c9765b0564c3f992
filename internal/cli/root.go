package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/projexhq/projex-server/internal/config"
	"github.com/projexhq/projex-server/internal/observability"
)

type options struct {
	envFile string
	logOut  io.Writer
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "projex",
		Short:         "Projex task and project management server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		opts.logOut = cmd.OutOrStdout()
	}
	cmd.AddCommand(newServeCommand(opts), newMigrateCommand(opts), newSeedCommand(opts))
	return cmd
}

func (o *options) loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return config.Load()
}

// bootstrap loads config and starts telemetry. Callers own the runtime.
func (o *options) bootstrap(ctx context.Context) (*config.Config, *observability.Runtime, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	rt, err := observability.InitRuntime(ctx, cfg, o.logOut)
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry: %w", err)
	}
	return cfg, rt, nil
}
