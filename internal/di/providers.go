package di

import (
	"context"
	"log/slog"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/projexhq/projex-server/internal/app"
	"github.com/projexhq/projex-server/internal/config"
	"github.com/projexhq/projex-server/internal/database"
	"github.com/projexhq/projex-server/internal/health"
	"github.com/projexhq/projex-server/internal/http/handler"
	"github.com/projexhq/projex-server/internal/http/middleware"
	"github.com/projexhq/projex-server/internal/http/router"
	"github.com/projexhq/projex-server/internal/observability"
	"github.com/projexhq/projex-server/internal/repository"
	"github.com/projexhq/projex-server/internal/security"
	"github.com/projexhq/projex-server/internal/service"
)

var infraSet = wire.NewSet(
	provideLogger,
	provideDB,
	provideRedis,
	provideReadiness,
	provideLimiter,
)

var repositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewWorkspaceRepository,
	repository.NewTagRepository,
	repository.NewProjectRepository,
)

var serviceSet = wire.NewSet(
	provideJWTManager,
	providePasswordHasher,
	provideSessionStore,
	service.NewWorkspaceService,
	service.NewAuthService,
	service.NewTagService,
	service.NewProjectService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.WorkspaceServiceInterface), new(*service.WorkspaceService)),
	wire.Bind(new(service.TagServiceInterface), new(*service.TagService)),
	wire.Bind(new(service.ProjectServiceInterface), new(*service.ProjectService)),
)

var httpSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewWorkspaceHandler,
	handler.NewTagHandler,
	handler.NewProjectHandler,
	provideRouterDependencies,
	router.NewRouter,
	app.NewHTTPServer,
)

func provideLogger(rt *observability.Runtime) *slog.Logger {
	if rt == nil || rt.Logger == nil {
		return slog.Default()
	}
	return rt.Logger
}

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (redis.UniversalClient, error) {
	return database.OpenRedis(ctx, cfg, logger)
}

func provideReadiness(cfg *config.Config, db *gorm.DB, rdb redis.UniversalClient) *health.ProbeRunner {
	return health.NewProbeRunner(cfg.ReadinessTimeout, cfg.ReadinessTimeout/2,
		health.DBChecker(db),
		health.RedisChecker(rdb),
	)
}

func provideLimiter(cfg *config.Config, rdb redis.UniversalClient) middleware.Limiter {
	return middleware.NewRedisFixedWindowLimiter(rdb, cfg.RateLimitKeyPrefix)
}

func provideJWTManager(cfg *config.Config) (*security.JWTManager, error) {
	return security.NewJWTManager(security.JWTOptions{
		Secret:     cfg.TokenSecretKey,
		Algorithm:  cfg.TokenAlgorithm,
		Issuer:     cfg.TokenIssuer,
		Audience:   cfg.TokenAudience,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Leeway:     cfg.TokenClockSkew,
	})
}

func providePasswordHasher(cfg *config.Config) security.PasswordHasher {
	return security.NewBcryptHasher(cfg.BcryptCost)
}

func provideSessionStore(cfg *config.Config, rdb redis.UniversalClient) service.SessionStore {
	return service.NewRedisSessionStore(rdb, cfg.SessionKeyPrefix)
}

func provideRouterDependencies(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	workspaceHandler *handler.WorkspaceHandler,
	tagHandler *handler.TagHandler,
	projectHandler *handler.ProjectHandler,
	auth service.AuthServiceInterface,
	limiter middleware.Limiter,
	readiness *health.ProbeRunner,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:      authHandler,
		WorkspaceHandler: workspaceHandler,
		TagHandler:       tagHandler,
		ProjectHandler:   projectHandler,
		AuthService:      auth,
		APIPrefix:        cfg.APIV1Prefix,
		CORSOrigins:      cfg.CORSOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		Limiter:          limiter,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.OTELHTTPEnabled,
	}
}
