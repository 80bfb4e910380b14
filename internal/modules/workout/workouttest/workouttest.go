// Package workouttest provides stage fixtures shared by the pipeline tests.
package workouttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/platform/openai"
)

const StartDate = "2025-03-01"

// StageJSON renders a stage reply covering n days starting at firstDay.
// Every fourth day is a rest day.
func StageJSON(userID string, firstDay, n int, notes string) string {
	start, _ := time.Parse(domain.DateLayout, StartDate)
	type day struct {
		Day     int    `json:"day"`
		Date    string `json:"date"`
		Type    string `json:"type"`
		Workout any    `json:"workout,omitempty"`
	}
	doc := struct {
		UserID         string `json:"user_id"`
		StartDate      string `json:"start_date"`
		TotalDays      int    `json:"total_days"`
		NotesFromCoach string `json:"notes_from_coach"`
		Plan           []day  `json:"plan"`
	}{UserID: userID, StartDate: StartDate, TotalDays: domain.TotalDays, NotesFromCoach: notes}
	for i := 0; i < n; i++ {
		d := firstDay + i
		entry := day{Day: d, Date: start.AddDate(0, 0, d-1).Format(domain.DateLayout), Type: "workout"}
		if d%4 == 0 {
			entry.Type = "rest"
		} else {
			entry.Workout = map[string]any{
				"title":     fmt.Sprintf("Session %d", d),
				"exercises": []map[string]any{{"name": "Squat", "sets": 3, "reps": "10"}},
			}
		}
		doc.Plan = append(doc.Plan, entry)
	}
	raw, _ := json.MarshalIndent(doc, "", "  ")
	return string(raw)
}

// Fenced wraps a reply the way chat models usually do.
func Fenced(body string) string {
	return "```json\n" + body + "\n```"
}

// Profile returns a complete profile for tests.
func Profile() domain.Profile {
	return domain.Profile{
		UserID:       uuid.MustParse("7f1d3c2a-3b7e-4f53-9c0e-0a4a5b8e9d11"),
		Name:         "Ana",
		Age:          30,
		Gender:       "female",
		Height:       168,
		Weight:       61.5,
		FitnessLevel: domain.LevelBeginner,
		FitnessGoal:  domain.GoalGeneralFitness,
		Location:     domain.LocationHome,
		Days:         []string{"monday", "wednesday", "friday"},
		Equipment:    []string{"bodyweight", "yoga mat"},
		StartDate:    StartDate,
	}
}

// Reply is one scripted stage result.
type Reply struct {
	Text string
	Err  error
}

// FakeStages answers CallStage from a script and records every conversation.
type FakeStages struct {
	mu      sync.Mutex
	replies []Reply
	calls   [][]openai.Message
	// Gate, when set, is received from before each reply.
	Gate chan struct{}
}

func NewFakeStages(replies ...Reply) *FakeStages {
	return &FakeStages{replies: replies}
}

// ThirtyDays scripts three valid ten-day replies.
func ThirtyDays(userID string) *FakeStages {
	return NewFakeStages(
		Reply{Text: StageJSON(userID, 1, 10, "Stay hydrated")},
		Reply{Text: StageJSON(userID, 11, 10, "")},
		Reply{Text: StageJSON(userID, 21, 10, "")},
	)
}

func (f *FakeStages) CallStage(ctx context.Context, messages []openai.Message) (string, error) {
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]openai.Message(nil), messages...))
	i := len(f.calls) - 1
	if i >= len(f.replies) {
		return "", fmt.Errorf("unexpected stage call %d", i+1)
	}
	r := f.replies[i]
	if r.Err != nil {
		return "", r.Err
	}
	return openai.Sanitize(r.Text)
}

func (f *FakeStages) Calls() [][]openai.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]openai.Message(nil), f.calls...)
}
