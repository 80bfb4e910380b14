package jobs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	workoutmod "github.com/mand0ng/fitness-app-backend/internal/modules/workout"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout/prompts"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout/workouttest"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
	"github.com/mand0ng/fitness-app-backend/internal/platform/openai"
)

// fakeUpstream answers chat completions in order from a list of
// (status, content) pairs.
type fakeUpstream struct {
	mu      sync.Mutex
	replies []upstreamReply
	calls   int
}

type upstreamReply struct {
	status  int
	content string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if i >= len(f.replies) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"unexpected call"}}`)
		return
	}
	reply := f.replies[i]
	if reply.status != http.StatusOK {
		w.WriteHeader(reply.status)
		_, _ = io.WriteString(w, `{"error":{"message":"No endpoints found for model","code":404}}`)
		return
	}
	body, _ := json.Marshal(map[string]any{
		"id":      "cmpl",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": reply.content},
			"finish_reason": "stop",
		}},
	})
	_, _ = w.Write(body)
}

func (f *fakeUpstream) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func pipelineRunner(t *testing.T, upstream *fakeUpstream, store PlanStore) *Runner {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client, err := openai.NewStageClient(logger.NewNop(), openai.StageConfig{
		APIKey:  "k",
		BaseURL: srv.URL + "/v1",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewStageClient: %v", err)
	}
	set, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	orch := workoutmod.NewOrchestrator(logger.NewNop(), client, prompts.NewStaticStore(set))
	return NewRunner(logger.NewNop(), NewMemoryRegistry(logger.NewNop(), 0), orch, store, RunnerConfig{})
}

func TestPipelineCompletesWithFencedReplies(t *testing.T) {
	upstream := &fakeUpstream{replies: []upstreamReply{
		{http.StatusOK, workouttest.Fenced(workouttest.StageJSON("u1", 1, 10, "Listen to your body"))},
		{http.StatusOK, workouttest.Fenced(workouttest.StageJSON("u1", 11, 10, ""))},
		{http.StatusOK, workouttest.Fenced(workouttest.StageJSON("u1", 21, 10, ""))},
	}}
	store := &fakeStore{}
	r := pipelineRunner(t, upstream, store)

	id, err := r.Submit(context.Background(), workouttest.Profile())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	r.Wait()

	st, err := r.Status(context.Background(), id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Status != StateCompleted {
		t.Fatalf("want completed, got %+v", st)
	}
	plan := st.WorkoutPlan
	if plan.TotalDays != 30 || len(plan.Plan) != 30 {
		t.Fatalf("want 30 days, got %d/%d", plan.TotalDays, len(plan.Plan))
	}
	for i, d := range plan.Plan {
		if d.Day != i+1 {
			t.Fatalf("days not contiguous at %d: %d", i, d.Day)
		}
	}
	if plan.NotesFromCoach != "Listen to your body" {
		t.Fatalf("notes: %q", plan.NotesFromCoach)
	}
	if store.calls() != 1 || upstream.count() != 3 {
		t.Fatalf("want 1 persist and 3 upstream calls, got %d and %d", store.calls(), upstream.count())
	}
}

func TestPipelineStageTwoUnavailable(t *testing.T) {
	upstream := &fakeUpstream{replies: []upstreamReply{
		{http.StatusOK, workouttest.Fenced(workouttest.StageJSON("u1", 1, 10, ""))},
		{http.StatusNotFound, ""},
	}}
	store := &fakeStore{}
	r := pipelineRunner(t, upstream, store)

	id, _ := r.Submit(context.Background(), workouttest.Profile())
	r.Wait()

	st, _ := r.Status(context.Background(), id)
	if st.Status != StateFailed {
		t.Fatalf("want failed, got %s", st.Status)
	}
	if st.Error != workout.UnavailableMessage || st.ErrorKind != workout.KindUpstreamUnavailable {
		t.Fatalf("unexpected failure payload %+v", st)
	}
	if store.calls() != 0 {
		t.Fatalf("no persistence expected")
	}
	if upstream.count() != 2 {
		t.Fatalf("stage 3 must not be called, got %d calls", upstream.count())
	}
}
