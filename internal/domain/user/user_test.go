package user

import (
	"testing"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
)

func completeUser() *User {
	age, height, weight := 30, 175, 72.5
	gender := GenderFemale
	level := workout.LevelIntermediate
	goal := workout.GoalBuildMuscle
	loc := workout.LocationGym
	return &User{
		Email:           "a@example.com",
		Name:            "Ana",
		Age:             &age,
		Gender:          &gender,
		Height:          &height,
		Weight:          &weight,
		FitnessLevel:    &level,
		FitnessGoal:     &goal,
		WorkoutLocation: &loc,
		DaysAvailable:   []string{"monday", "thursday"},
		Equipment:       []string{},
	}
}

func TestOnboardingComplete(t *testing.T) {
	u := completeUser()
	if !u.OnboardingComplete() {
		t.Fatalf("expected complete")
	}
	u.Equipment = nil
	if u.OnboardingComplete() {
		t.Fatalf("missing equipment should be incomplete")
	}
	var nilUser *User
	if nilUser.OnboardingComplete() {
		t.Fatalf("nil user is never complete")
	}
}

func TestProfileSnapshot(t *testing.T) {
	u := completeUser()
	p := u.Profile("2025-03-01")
	if p.Age != 30 || p.Gender != "female" || p.FitnessGoal != workout.GoalBuildMuscle || p.StartDate != "2025-03-01" {
		t.Fatalf("unexpected profile %+v", p)
	}
	u.DaysAvailable[0] = "sunday"
	if p.Days[0] != "monday" {
		t.Fatalf("profile must not alias the user's slices")
	}
}
