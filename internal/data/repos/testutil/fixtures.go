package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mand0ng/fitness-app-backend/internal/domain/user"
	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
)

// SeedUser inserts a user. With onboarded set, every onboarding answer is
// filled in.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, onboarded bool) *user.User {
	tb.Helper()
	u := &user.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Ana",
	}
	if onboarded {
		age, height, weight := 30, 168, 61.5
		gender := user.GenderFemale
		level := workout.LevelBeginner
		goal := workout.GoalGeneralFitness
		loc := workout.LocationHome
		u.Age = &age
		u.Height = &height
		u.Weight = &weight
		u.Gender = &gender
		u.FitnessLevel = &level
		u.FitnessGoal = &goal
		u.WorkoutLocation = &loc
		u.DaysAvailable = []string{"monday", "wednesday", "friday"}
		u.Equipment = []string{"bodyweight"}
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}
