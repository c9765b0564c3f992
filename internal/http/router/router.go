package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/projexhq/projex-server/internal/health"
	"github.com/projexhq/projex-server/internal/http/handler"
	"github.com/projexhq/projex-server/internal/http/middleware"
	"github.com/projexhq/projex-server/internal/http/response"
	"github.com/projexhq/projex-server/internal/service"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	WorkspaceHandler *handler.WorkspaceHandler
	TagHandler       *handler.TagHandler
	ProjectHandler   *handler.ProjectHandler
	AuthService      service.AuthServiceInterface
	APIPrefix        string
	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int
	// Limiter backs both rate limiters; nil uses per-process counters.
	Limiter        middleware.Limiter
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	limiter := dep.Limiter
	mode := middleware.FailOpen
	if limiter == nil {
		limiter = middleware.NewLocalFixedWindowLimiter()
		mode = middleware.FailClosed
	}
	apiLimiter := middleware.NewDistributedRateLimiter(limiter, dep.APIRateLimitRPM, time.Minute, mode, "api").Middleware()
	authLimiter := middleware.NewDistributedRateLimiter(limiter, dep.AuthRateLimitRPM, time.Minute, mode, "auth").Middleware()
	requireUser := middleware.AuthMiddleware(dep.AuthService)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	prefix := dep.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	r.Route(prefix, func(r chi.Router) {
		r.Use(apiLimiter)

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Post("/refresh", dep.AuthHandler.Refresh)
			r.Post("/logout", dep.AuthHandler.Logout)
			r.With(requireUser).Get("/me", dep.AuthHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Route("/workspaces", func(r chi.Router) {
				r.Post("/", dep.WorkspaceHandler.Create)
				r.Get("/", dep.WorkspaceHandler.List)
				r.Get("/{id}", dep.WorkspaceHandler.Get)
				r.Put("/{id}", dep.WorkspaceHandler.Update)
				r.Delete("/{id}", dep.WorkspaceHandler.Delete)
				r.Get("/{id}/projects", dep.WorkspaceHandler.Projects)
			})

			r.Post("/tags", dep.TagHandler.Create)
			r.Get("/tags/search", dep.TagHandler.Search)

			r.Post("/projects", dep.ProjectHandler.Create)
			r.Get("/projects/{id}", dep.ProjectHandler.Get)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
