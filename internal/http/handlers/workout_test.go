package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/jobs"
	"github.com/mand0ng/fitness-app-backend/internal/platform/apierr"
	"github.com/mand0ng/fitness-app-backend/internal/platform/ctxutil"
)

type fakeWorkouts struct {
	createID  string
	createErr error
	status    jobs.Status
	doc       *workout.PlanDocument
	docErr    error
	gotUser   uuid.UUID
	gotJob    string
}

func (f *fakeWorkouts) CreateUserWorkout(ctx context.Context, userID uuid.UUID) (string, error) {
	f.gotUser = userID
	return f.createID, f.createErr
}

func (f *fakeWorkouts) GetJobStatus(ctx context.Context, userID uuid.UUID, jobID string) (jobs.Status, error) {
	f.gotUser = userID
	f.gotJob = jobID
	return f.status, nil
}

func (f *fakeWorkouts) GetUserWorkout(ctx context.Context, userID uuid.UUID) (*workout.PlanDocument, error) {
	f.gotUser = userID
	return f.doc, f.docErr
}

func serve(t *testing.T, fake *fakeWorkouts, userID uuid.UUID, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewWorkoutHandler(fake)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	r.POST("/api/workout/generate", h.Generate)
	r.GET("/api/workout", h.GetWorkout)
	r.GET("/api/workout/jobs/:id", h.GetJobStatus)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestGenerateAccepted(t *testing.T) {
	uid := uuid.New()
	fake := &fakeWorkouts{createID: "job_x_1"}
	rec := serve(t, fake, uid, http.MethodPost, "/api/workout/generate")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["status"] != "success" || body["job_id"] != "job_x_1" {
		t.Fatalf("body: %v", body)
	}
	if fake.gotUser != uid {
		t.Fatalf("service got user %s", fake.gotUser)
	}
}

func TestGenerateMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{apierr.New(http.StatusConflict, "workout_exists", errors.New("exists")), http.StatusConflict, "workout_exists"},
		{apierr.New(http.StatusBadRequest, "profile_incomplete", errors.New("incomplete")), http.StatusBadRequest, "profile_incomplete"},
		{errors.New("db down"), http.StatusInternalServerError, "create_workout_failed"},
	}
	for _, tc := range cases {
		rec := serve(t, &fakeWorkouts{createErr: tc.err}, uuid.New(), http.MethodPost, "/api/workout/generate")
		if rec.Code != tc.want {
			t.Fatalf("%v: status %d", tc.err, rec.Code)
		}
		errBody, _ := decode(t, rec)["error"].(map[string]any)
		if errBody["code"] != tc.code {
			t.Fatalf("%v: code %v", tc.err, errBody["code"])
		}
		if tc.want == http.StatusInternalServerError && errBody["message"] == "db down" {
			t.Fatalf("internal error message leaked")
		}
	}
}

func TestGenerateWithoutRequestData(t *testing.T) {
	rec := serve(t, &fakeWorkouts{}, uuid.Nil, http.MethodPost, "/api/workout/generate")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestGetJobStatus(t *testing.T) {
	fake := &fakeWorkouts{status: jobs.Status{Status: jobs.StateProcessing}}
	rec := serve(t, fake, uuid.New(), http.MethodGet, "/api/workout/jobs/job_abc_1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	if fake.gotJob != "job_abc_1" {
		t.Fatalf("job id: %q", fake.gotJob)
	}
	js, _ := decode(t, rec)["job_status"].(map[string]any)
	if js["status"] != "processing" {
		t.Fatalf("job_status: %v", js)
	}

	fake.status = jobs.Status{Status: jobs.StateFailed, Error: workout.UnavailableMessage, ErrorKind: workout.KindUpstreamUnavailable}
	rec = serve(t, fake, uuid.New(), http.MethodGet, "/api/workout/jobs/job_abc_1")
	js, _ = decode(t, rec)["job_status"].(map[string]any)
	if js["status"] != "failed" || js["error"] != workout.UnavailableMessage || js["error_kind"] != "upstream_unavailable" {
		t.Fatalf("failed job_status: %v", js)
	}

	fake.status = jobs.NotFoundStatus()
	rec = serve(t, fake, uuid.New(), http.MethodGet, "/api/workout/jobs/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("not found status: %d", rec.Code)
	}
	js, _ = decode(t, rec)["job_status"].(map[string]any)
	if js["status"] != "not_found" {
		t.Fatalf("not found body: %v", js)
	}
}

func TestGetWorkout(t *testing.T) {
	doc := &workout.PlanDocument{
		UserID:    "u1",
		StartDate: "2025-03-01",
		TotalDays: 30,
		Plan: []workout.DayEntry{
			{Day: 1, Date: "2025-03-01", Kind: workout.DayWorkout, Workout: json.RawMessage(`{"title":"Legs"}`)},
			{Day: 2, Date: "2025-03-02", Kind: workout.DayRest},
		},
	}
	rec := serve(t, &fakeWorkouts{doc: doc}, uuid.New(), http.MethodGet, "/api/workout")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	body := decode(t, rec)
	plan, _ := body["plan"].([]any)
	if len(plan) != 2 {
		t.Fatalf("plan: %v", body)
	}
	if _, has := plan[1].(map[string]any)["workout"]; has {
		t.Fatalf("rest day should omit workout")
	}

	rec = serve(t, &fakeWorkouts{docErr: apierr.New(http.StatusNotFound, "workout_not_found", errors.New("none"))}, uuid.New(), http.MethodGet, "/api/workout")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing workout status: %d", rec.Code)
	}
}
