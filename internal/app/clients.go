package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
	"github.com/mand0ng/fitness-app-backend/internal/platform/openai"
)

type Clients struct {
	Stage *openai.StageClient
	// Redis is nil unless the redis job registry is selected.
	Redis redis.UniversalClient
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	stage, err := openai.NewStageClient(log, openai.StageConfig{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init stage client: %w", err)
	}

	var rdb redis.UniversalClient
	if cfg.JobRegistry == RegistryRedis {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
	}

	return Clients{Stage: stage, Redis: rdb}, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
