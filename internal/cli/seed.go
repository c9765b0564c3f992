package cli

import (
	"context"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/projexhq/projex-server/internal/config"
	"github.com/projexhq/projex-server/internal/database"
	"github.com/projexhq/projex-server/internal/observability"
	"github.com/projexhq/projex-server/internal/repository"
	"github.com/projexhq/projex-server/internal/security"
	"github.com/projexhq/projex-server/internal/seed"
	"github.com/projexhq/projex-server/internal/service"
)

func newSeedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the first superuser and default tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(ctx context.Context, cfg *config.Config, rt *observability.Runtime, db *gorm.DB) error {
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
				s := seed.New(
					repository.NewUserRepository(db),
					security.NewBcryptHasher(cfg.BcryptCost),
					service.NewTagService(repository.NewTagRepository(db)),
					rt.Logger,
				)
				_, err := s.Run(ctx, seed.Superuser{
					Name:     cfg.FirstSuperuserName,
					Email:    cfg.FirstSuperuserEmail,
					Password: cfg.FirstSuperuserPassword,
				})
				return err
			})
		},
	}
}
