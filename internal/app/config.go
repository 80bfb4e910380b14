package app

import (
	"strings"
	"time"

	"github.com/mand0ng/fitness-app-backend/internal/data/db"
	"github.com/mand0ng/fitness-app-backend/internal/jobs"
	"github.com/mand0ng/fitness-app-backend/internal/observability"
	"github.com/mand0ng/fitness-app-backend/internal/platform/envutil"
	"github.com/mand0ng/fitness-app-backend/internal/platform/openai"
)

const (
	RegistryMemory = "memory"
	RegistryRedis  = "redis"
)

type Config struct {
	LogMode string
	Env     string
	Version string

	Port            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	JWTSecretKey string
	JWTAlgorithm string

	DB          db.Config
	AutoMigrate bool

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	PromptsFile  string
	PromptsWatch bool

	JobRegistry       string
	JobRetention      time.Duration
	JobMaxConcurrency int

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	MetricsEnabled bool
	Otel           observability.OtelConfig
}

// LoadConfig reads the process environment. Missing values fall back to
// local development defaults; required secrets are checked by the
// components that use them.
func LoadConfig() Config {
	env := envutil.String("APP_ENV", "development")
	version := envutil.String("APP_VERSION", "dev")
	return Config{
		LogMode: envutil.String("LOG_MODE", "development"),
		Env:     env,
		Version: version,

		Port:            envutil.String("PORT", "8080"),
		CORSOrigins:     envutil.List("CORS_ORIGINS", nil),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 30*time.Second),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		JWTAlgorithm: envutil.String("JWT_ALGORITHM", "HS256"),

		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "fitness"),
			SQLitePath:       envutil.String("SQLITE_PATH", "fitness.db"),
		},
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true),

		LLMAPIKey:  envutil.String("OPEN_ROUTER_API_KEY", ""),
		LLMBaseURL: envutil.String("OPEN_ROUTER_API_BASE_URL", openai.DefaultBaseURL),
		LLMModel:   envutil.String("OPEN_ROUTER_MODEL_NAME", ""),
		LLMTimeout: time.Duration(envutil.Int("LLM_TIMEOUT_SECONDS", int(openai.DefaultTimeout/time.Second))) * time.Second,

		PromptsFile:  envutil.String("PROMPTS_FILE", ""),
		PromptsWatch: envutil.Bool("PROMPTS_WATCH", false),

		JobRegistry:       strings.ToLower(envutil.String("JOB_REGISTRY", RegistryMemory)),
		JobRetention:      envutil.Duration("JOB_RETENTION", 0),
		JobMaxConcurrency: envutil.Int("JOB_MAX_CONCURRENCY", jobs.DefaultMaxConcurrency),

		RedisAddr:      envutil.String("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  envutil.String("REDIS_PASSWORD", ""),
		RedisDB:        envutil.Int("REDIS_DB", 0),
		RedisKeyPrefix: envutil.String("REDIS_KEY_PREFIX", "workout:"),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "fitness-app-backend"),
			Environment: env,
			Version:     version,
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
	}
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
