package workout

import "github.com/google/uuid"

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvance      FitnessLevel = "advance"
)

type FitnessGoal string

const (
	GoalLoseWeight       FitnessGoal = "lose weight"
	GoalBuildMuscle      FitnessGoal = "build muscle"
	GoalImproveEndurance FitnessGoal = "improve endurance"
	GoalGeneralFitness   FitnessGoal = "general fitness"
)

type Location string

const (
	LocationHome Location = "home workout"
	LocationGym  Location = "gym workout"
	LocationBoth Location = "both home and gym"
)

// Profile is the immutable input of one generation run.
type Profile struct {
	UserID       uuid.UUID
	Name         string
	Age          int
	Gender       string
	Height       int
	Weight       float64
	FitnessLevel FitnessLevel
	FitnessGoal  FitnessGoal
	Location     Location
	Days         []string
	Equipment    []string
	Notes        string
	StartDate    string
}
