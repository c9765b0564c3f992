package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/projexhq/projex-server/internal/config"
	"github.com/projexhq/projex-server/internal/database"
	"github.com/projexhq/projex-server/internal/observability"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(ctx context.Context, _ *config.Config, rt *observability.Runtime, db *gorm.DB) error {
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
				rt.Logger.Info("migrations applied")
				return nil
			})
		},
	}
}

// withDB runs fn with an open database and closes it and the telemetry
// runtime afterwards.
func (o *options) withDB(ctx context.Context, fn func(context.Context, *config.Config, *observability.Runtime, *gorm.DB) error) (err error) {
	cfg, rt, err := o.bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rt.Shutdown(context.WithoutCancel(ctx))) }()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := database.Close(db); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
		}
	}()
	return fn(ctx, cfg, rt, db)
}
