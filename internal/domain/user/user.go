package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// User is the account row plus the onboarding answers that feed plan
// generation. Onboarding fields stay nil until the user fills them in.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Name     string    `gorm:"not null;column:name" json:"name"`

	Age             *int                  `gorm:"column:age" json:"age,omitempty"`
	Gender          *Gender               `gorm:"column:gender" json:"gender,omitempty"`
	Height          *int                  `gorm:"column:height" json:"height,omitempty"`
	Weight          *float64              `gorm:"column:weight" json:"weight,omitempty"`
	FitnessLevel    *workout.FitnessLevel `gorm:"column:fitness_level" json:"fitness_level,omitempty"`
	FitnessGoal     *workout.FitnessGoal  `gorm:"column:fitness_goal" json:"fitness_goal,omitempty"`
	WorkoutLocation *workout.Location     `gorm:"column:work_out_location" json:"work_out_location,omitempty"`
	DaysAvailable   []string              `gorm:"column:days_availability;serializer:json;type:text" json:"days_availability,omitempty"`
	Equipment       []string              `gorm:"column:equipment_availability;serializer:json;type:text" json:"equipment_availability,omitempty"`
	Notes           *string               `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// OnboardingComplete reports whether every answer plan generation depends on
// has been given. Notes are optional.
func (u *User) OnboardingComplete() bool {
	if u == nil {
		return false
	}
	return u.Age != nil &&
		u.Weight != nil &&
		u.Height != nil &&
		u.Gender != nil &&
		u.FitnessLevel != nil &&
		u.FitnessGoal != nil &&
		u.WorkoutLocation != nil &&
		u.DaysAvailable != nil &&
		u.Equipment != nil
}

// Profile snapshots the user for one generation run starting on startDate.
func (u *User) Profile(startDate string) workout.Profile {
	p := workout.Profile{
		UserID:    u.ID,
		Name:      u.Name,
		Days:      append([]string(nil), u.DaysAvailable...),
		Equipment: append([]string(nil), u.Equipment...),
		StartDate: startDate,
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = string(*u.Gender)
	}
	if u.Height != nil {
		p.Height = *u.Height
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.FitnessLevel != nil {
		p.FitnessLevel = *u.FitnessLevel
	}
	if u.FitnessGoal != nil {
		p.FitnessGoal = *u.FitnessGoal
	}
	if u.WorkoutLocation != nil {
		p.Location = *u.WorkoutLocation
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	return p
}
