package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/mand0ng/fitness-app-backend/internal/http/handlers"
	httpMW "github.com/mand0ng/fitness-app-backend/internal/http/middleware"
	"github.com/mand0ng/fitness-app-backend/internal/observability"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	WorkoutHandler *httpH.WorkoutHandler
	HealthHandler  *httpH.HealthHandler

	// Metrics, when set, instruments requests and serves GET /metrics.
	Metrics     *observability.Metrics
	CORSOrigins []string
	// TracingService, when set, enables otelgin spans under that name.
	TracingService string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Workout
		if cfg.WorkoutHandler != nil {
			protected.POST("/workout/generate", cfg.WorkoutHandler.Generate)
			protected.GET("/workout", cfg.WorkoutHandler.GetWorkout)
			protected.GET("/workout/jobs/:id", cfg.WorkoutHandler.GetJobStatus)
		}
	}

	return r
}
