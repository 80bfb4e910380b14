package workout

import (
	"strconv"
	"strings"

	domain "github.com/mand0ng/fitness-app-backend/internal/domain/workout"
)

// ProfileText renders the profile block substituted into every stage prompt.
func ProfileText(p domain.Profile) string {
	notes := strings.TrimSpace(p.Notes)
	if notes == "" {
		notes = "No notes provided"
	}
	lines := []string{
		"id: " + p.UserID.String(),
		"Name: " + p.Name,
		"Age: " + strconv.Itoa(p.Age),
		"Gender: " + p.Gender,
		"Weight: " + strconv.FormatFloat(p.Weight, 'f', -1, 64),
		"Height: " + strconv.Itoa(p.Height),
		"Fitness Level: " + string(p.FitnessLevel),
		"Fitness Goal: " + string(p.FitnessGoal),
		"Workout Location: " + string(p.Location),
		"Days Available: " + strings.Join(p.Days, ", "),
		"Equipment: " + strings.Join(p.Equipment, ", "),
		"Notes: " + notes,
		"Start Date: " + p.StartDate,
	}
	return strings.Join(lines, "\n")
}
