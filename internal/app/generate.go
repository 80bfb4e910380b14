package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/pkg/dbctx"
)

var ErrProfileIncomplete = errors.New("user has not completed onboarding")

// GeneratePlan runs the three stages for one user in the foreground. With
// persist set the plan is stored and its program id returned.
func (a *App) GeneratePlan(ctx context.Context, userID uuid.UUID, persist bool) (*workout.PlanDocument, uuid.UUID, error) {
	u, err := a.Repos.User.GetByID(dbctx.Background(ctx), userID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if !u.OnboardingComplete() {
		return nil, uuid.Nil, ErrProfileIncomplete
	}
	profile := u.Profile(time.Now().UTC().Format(workout.DateLayout))
	plan, err := a.Services.Orchestrator.Generate(ctx, profile)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if !persist {
		return plan, uuid.Nil, nil
	}
	programID, err := a.Services.PlanStore.SavePlan(ctx, u.ID, plan)
	if err != nil {
		return nil, uuid.Nil, workout.Wrap(workout.KindPersistenceFailure, "app.generate", err)
	}
	return plan, programID, nil
}
