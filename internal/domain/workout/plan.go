package workout

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	// TotalDays is the fixed horizon of an assembled plan.
	TotalDays = 30
	// StageDays is the slice of the horizon produced by one stage.
	StageDays = 10
	// DateLayout is the calendar date format used on the wire and in prompts.
	DateLayout = "2006-01-02"
)

type DayKind string

const (
	DayWorkout DayKind = "workout"
	DayRest    DayKind = "rest"
)

// DayEntry is one day of a plan. Workout is kept opaque; it is only meaningful
// when Kind is DayWorkout.
type DayEntry struct {
	Day     int             `json:"day"`
	Date    string          `json:"date"`
	Kind    DayKind         `json:"type"`
	Workout json.RawMessage `json:"workout,omitempty"`
}

// PlanDocument is the assembled 30-day plan.
type PlanDocument struct {
	UserID         FlexID     `json:"user_id"`
	StartDate      string     `json:"start_date"`
	TotalDays      int        `json:"total_days"`
	NotesFromCoach string     `json:"notes_from_coach"`
	Plan           []DayEntry `json:"plan"`
}

// PartialPlan is the parsed output of one stage.
type PartialPlan struct {
	UserID         FlexID     `json:"user_id"`
	StartDate      string     `json:"start_date"`
	TotalDays      int        `json:"total_days"`
	NotesFromCoach string     `json:"notes_from_coach"`
	Plan           []DayEntry `json:"plan"`
}

// FlexID accepts the user id echoed by the model as either a JSON string or a
// bare number.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = FlexID(n.String())
		return nil
	}
}

func (f FlexID) String() string { return string(f) }
