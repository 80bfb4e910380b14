package app

import (
	"fmt"

	"github.com/mand0ng/fitness-app-backend/internal/jobs"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout/prompts"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
	"github.com/mand0ng/fitness-app-backend/internal/services"
)

type Services struct {
	Prompts      *prompts.Store
	Orchestrator *workout.Orchestrator
	Registry     jobs.Registry
	// MemoryRegistry is set when Registry is the in-process one, so its
	// janitor can be started.
	MemoryRegistry *jobs.MemoryRegistry
	PlanStore      jobs.PlanStore
	Runner         *jobs.Runner
	Workout        services.WorkoutService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	promptStore, err := prompts.NewStore(log, cfg.PromptsFile)
	if err != nil {
		return Services{}, fmt.Errorf("load prompts: %w", err)
	}
	orchestrator := workout.NewOrchestrator(log, clients.Stage, promptStore)

	var (
		registry jobs.Registry
		memory   *jobs.MemoryRegistry
	)
	switch cfg.JobRegistry {
	case RegistryRedis:
		registry = jobs.NewRedisRegistry(log, clients.Redis, cfg.RedisKeyPrefix, cfg.JobRetention)
	case RegistryMemory, "":
		memory = jobs.NewMemoryRegistry(log, cfg.JobRetention)
		registry = memory
	default:
		return Services{}, fmt.Errorf("unsupported JOB_REGISTRY %q", cfg.JobRegistry)
	}

	planStore := services.NewPlanStore(log, repos.Tx, repos.Program)
	runner := jobs.NewRunner(log, registry, orchestrator, planStore, jobs.RunnerConfig{
		MaxConcurrency: cfg.JobMaxConcurrency,
	})

	return Services{
		Prompts:        promptStore,
		Orchestrator:   orchestrator,
		Registry:       registry,
		MemoryRegistry: memory,
		PlanStore:      planStore,
		Runner:         runner,
		Workout:        services.NewWorkoutService(log, repos.User, repos.Program, runner),
	}, nil
}
