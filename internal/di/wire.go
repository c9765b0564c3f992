//go:build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/projexhq/projex-server/internal/app"
	"github.com/projexhq/projex-server/internal/config"
	"github.com/projexhq/projex-server/internal/observability"
)

func InitializeApp(ctx context.Context, cfg *config.Config, rt *observability.Runtime) (*app.App, error) {
	wire.Build(infraSet, repositorySet, serviceSet, httpSet, app.New)
	return nil, nil
}
