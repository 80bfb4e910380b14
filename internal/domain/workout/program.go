package workout

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkoutProgram is the persisted header of an accepted plan.
type WorkoutProgram struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	StartDate      time.Time    `gorm:"type:date;not null;column:start_date" json:"start_date"`
	TotalDays      int          `gorm:"not null;column:total_days" json:"total_days"`
	NotesFromCoach string       `gorm:"type:text;column:notes_from_coach" json:"notes_from_coach"`
	Days           []WorkoutDay `gorm:"foreignKey:WorkoutProgramID;constraint:OnDelete:CASCADE" json:"days,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;index" json:"created_at"`
}

func (WorkoutProgram) TableName() string { return "workout_programs" }

func (p *WorkoutProgram) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// WorkoutDay is one persisted day. Details are NULL for rest days.
type WorkoutDay struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WorkoutProgramID uuid.UUID      `gorm:"type:uuid;not null;index;column:workout_program_id" json:"workout_program_id"`
	DaySequence      int            `gorm:"not null;column:day_sequence" json:"day_sequence"`
	Date             time.Time      `gorm:"type:date;not null;column:date" json:"date"`
	DayType          DayKind        `gorm:"not null;column:workout_day_type;default:workout" json:"workout_day_type"`
	WorkoutDetails   datatypes.JSON `gorm:"type:jsonb;column:workout_details" json:"workout_details,omitempty"`
}

func (WorkoutDay) TableName() string { return "workout_days" }

func (d *WorkoutDay) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// NewProgram converts an assembled plan into rows ready for insertion. The
// program id is assigned on insert and must be copied onto the days by the
// caller.
func NewProgram(userID uuid.UUID, plan *PlanDocument) (*WorkoutProgram, []*WorkoutDay, error) {
	const op = "workout.new_program"
	if plan == nil {
		return nil, nil, NewError(KindInternal, op, "nil plan", nil)
	}
	start, err := time.Parse(DateLayout, plan.StartDate)
	if err != nil {
		return nil, nil, NewError(KindMalformedResponse, op, "invalid start_date "+plan.StartDate, err)
	}
	program := &WorkoutProgram{
		UserID:         userID,
		StartDate:      start,
		TotalDays:      plan.TotalDays,
		NotesFromCoach: plan.NotesFromCoach,
	}
	days := make([]*WorkoutDay, 0, len(plan.Plan))
	for _, entry := range plan.Plan {
		date, err := time.Parse(DateLayout, entry.Date)
		if err != nil {
			return nil, nil, NewError(KindMalformedResponse, op, "invalid day date "+entry.Date, err)
		}
		day := &WorkoutDay{
			DaySequence: entry.Day,
			Date:        date,
			DayType:     entry.Kind,
		}
		if entry.Kind == DayWorkout && len(entry.Workout) > 0 {
			day.WorkoutDetails = datatypes.JSON(entry.Workout)
		}
		days = append(days, day)
	}
	return program, days, nil
}

// ToDocument renders a persisted program back into plan form, days ordered by
// sequence.
func (p *WorkoutProgram) ToDocument() *PlanDocument {
	doc := &PlanDocument{
		UserID:         FlexID(p.UserID.String()),
		StartDate:      p.StartDate.Format(DateLayout),
		TotalDays:      p.TotalDays,
		NotesFromCoach: p.NotesFromCoach,
		Plan:           make([]DayEntry, 0, len(p.Days)),
	}
	days := append([]WorkoutDay(nil), p.Days...)
	sort.SliceStable(days, func(i, j int) bool { return days[i].DaySequence < days[j].DaySequence })
	for _, d := range days {
		entry := DayEntry{Day: d.DaySequence, Date: d.Date.Format(DateLayout), Kind: d.DayType}
		if len(d.WorkoutDetails) > 0 && string(d.WorkoutDetails) != "null" {
			entry.Workout = json.RawMessage(d.WorkoutDetails)
		}
		doc.Plan = append(doc.Plan, entry)
	}
	return doc
}
