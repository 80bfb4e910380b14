package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mand0ng/fitness-app-backend/internal/data/aggregates"
	"github.com/mand0ng/fitness-app-backend/internal/data/repos/programs"
	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/jobs"
	"github.com/mand0ng/fitness-app-backend/internal/pkg/dbctx"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

type planStore struct {
	tx          aggregates.TxRunner
	programRepo programs.ProgramRepo
	log         *logger.Logger
}

// NewPlanStore persists accepted plans as one program row plus one row per
// day, all in a single transaction.
func NewPlanStore(log *logger.Logger, tx aggregates.TxRunner, programRepo programs.ProgramRepo) jobs.PlanStore {
	return &planStore{
		tx:          tx,
		programRepo: programRepo,
		log:         log.With("service", "PlanStore"),
	}
}

func (s *planStore) SavePlan(ctx context.Context, userID uuid.UUID, plan *workout.PlanDocument) (uuid.UUID, error) {
	program, days, err := workout.NewProgram(userID, plan)
	if err != nil {
		return uuid.Nil, err
	}

	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		created, err := s.programRepo.CreateProgram(dbc, program)
		if err != nil {
			return fmt.Errorf("insert program: %w", err)
		}
		for _, d := range days {
			d.WorkoutProgramID = created.ID
		}
		if _, err := s.programRepo.CreateDays(dbc, days); err != nil {
			return fmt.Errorf("insert days: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Persisting workout plan failed", "user_id", userID, "error", err)
		return uuid.Nil, err
	}
	s.log.Debug("Workout plan persisted", "user_id", userID, "program_id", program.ID, "days", len(days))
	return program.ID, nil
}
