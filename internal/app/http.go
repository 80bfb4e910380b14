package app

import (
	"github.com/mand0ng/fitness-app-backend/internal/http"
	httpH "github.com/mand0ng/fitness-app-backend/internal/http/handlers"
	httpMW "github.com/mand0ng/fitness-app-backend/internal/http/middleware"
	"github.com/mand0ng/fitness-app-backend/internal/observability"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Workout *httpH.WorkoutHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Workout: httpH.NewWorkoutHandler(services.Workout),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, repos Repos) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
			Secret:    cfg.JWTSecretKey,
			Algorithm: cfg.JWTAlgorithm,
		}, repos.User),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	routerCfg := http.RouterConfig{
		Log:            log.With("component", "HTTP"),
		AuthMiddleware: middleware.Auth,
		WorkoutHandler: handlers.Workout,
		HealthHandler:  handlers.Health,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
	}
	if cfg.Otel.Enabled {
		routerCfg.TracingService = cfg.Otel.ServiceName
	}
	return http.NewServer(routerCfg, cfg.Addr())
}
