package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projexhq/projex-server/internal/database"
	"github.com/projexhq/projex-server/internal/di"
)

func newServeCommand(opts *options) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, rt, err := opts.bootstrap(ctx)
			if err != nil {
				return err
			}
			a, err := di.InitializeApp(ctx, cfg, rt)
			if err != nil {
				return errors.Join(fmt.Errorf("initialize app: %w", err), rt.Shutdown(ctx))
			}
			if migrate {
				if err := database.Migrate(ctx, a.DB); err != nil {
					return errors.Join(err, a.Close())
				}
			}
			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}
