package jobs

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
)

type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	// StateNotFound is only ever reported, never stored.
	StateNotFound State = "not_found"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is the status record of one plan generation. Values are copied in and
// out of registries; the Plan pointer is never mutated after completion.
type Job struct {
	ID         string                `json:"id"`
	UserID     uuid.UUID             `json:"user_id"`
	State      State                 `json:"status"`
	Plan       *workout.PlanDocument `json:"workout_plan,omitempty"`
	ProgramID  *uuid.UUID            `json:"program_id,omitempty"`
	Error      string                `json:"error,omitempty"`
	ErrorKind  workout.ErrorKind     `json:"error_kind,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
}

// Terminal is the single state change a job makes after creation.
type Terminal struct {
	State     State
	Plan      *workout.PlanDocument
	ProgramID *uuid.UUID
	Error     string
	ErrorKind workout.ErrorKind
	At        time.Time
}

func (j *Job) apply(t Terminal) {
	j.State = t.State
	j.Plan = t.Plan
	j.ProgramID = t.ProgramID
	j.Error = t.Error
	j.ErrorKind = t.ErrorKind
	at := t.At
	j.FinishedAt = &at
}

// NewJobID builds "job_<user>_<unix seconds>". Two submissions by the same
// user within one second collide and share one record, which ends in the
// outcome of whichever job finishes last.
func NewJobID(userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("job_%s_%d", userID, now.UTC().Unix())
}

// Status is the poll view of a job.
type Status struct {
	Status      State                 `json:"status"`
	WorkoutPlan *workout.PlanDocument `json:"workout_plan,omitempty"`
	Error       string                `json:"error,omitempty"`
	ErrorKind   workout.ErrorKind     `json:"error_kind,omitempty"`
}

func NotFoundStatus() Status {
	return Status{Status: StateNotFound}
}

func (j Job) Status() Status {
	s := Status{Status: j.State}
	switch j.State {
	case StateCompleted:
		s.WorkoutPlan = j.Plan
	case StateFailed:
		s.Error = j.Error
		s.ErrorKind = j.ErrorKind
	}
	return s
}
