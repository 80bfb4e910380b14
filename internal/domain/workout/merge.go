package workout

import "fmt"

// Merge concatenates three stage outputs in order into one plan. Coach notes
// come from the first stage only and day numbers are taken as given. The
// first stage must carry the start date.
func Merge(p1, p2, p3 PartialPlan) (*PlanDocument, error) {
	if p1.StartDate == "" {
		return nil, NewError(KindMalformedResponse, "workout.merge", "stage 1 is missing start_date", nil)
	}
	days := make([]DayEntry, 0, len(p1.Plan)+len(p2.Plan)+len(p3.Plan))
	days = append(days, p1.Plan...)
	days = append(days, p2.Plan...)
	days = append(days, p3.Plan...)

	if len(days) != TotalDays {
		return nil, NewError(
			KindInvariantViolation,
			"workout.merge",
			fmt.Sprintf("merged plan has %d days, want %d (stages: %d/%d/%d)", len(days), TotalDays, len(p1.Plan), len(p2.Plan), len(p3.Plan)),
			nil,
		)
	}
	return &PlanDocument{
		UserID:         p1.UserID,
		StartDate:      p1.StartDate,
		TotalDays:      TotalDays,
		NotesFromCoach: p1.NotesFromCoach,
		Plan:           days,
	}, nil
}
