package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mand0ng/fitness-app-backend/internal/domain/user"
	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&workout.WorkoutProgram{},
		&workout.WorkoutDay{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
