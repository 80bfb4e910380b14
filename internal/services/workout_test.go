package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mand0ng/fitness-app-backend/internal/data/aggregates"
	"github.com/mand0ng/fitness-app-backend/internal/data/repos/programs"
	"github.com/mand0ng/fitness-app-backend/internal/data/repos/testutil"
	"github.com/mand0ng/fitness-app-backend/internal/data/repos/users"
	domain "github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/jobs"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout/prompts"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout/workouttest"
	"github.com/mand0ng/fitness-app-backend/internal/pkg/dbctx"
	"github.com/mand0ng/fitness-app-backend/internal/platform/apierr"
)

var submittedAt = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	runner   *jobs.Runner
	svc      WorkoutService
	programs programs.ProgramRepo
}

func newFixture(t *testing.T, db *gorm.DB, stages workout.StageCaller) *fixture {
	t.Helper()
	log := testutil.Logger(t)
	set, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	programRepo := programs.NewProgramRepo(db, log)
	orch := workout.NewOrchestrator(log, stages, prompts.NewStaticStore(set))
	store := NewPlanStore(log, aggregates.NewGormTxRunner(db), programRepo)
	runner := jobs.NewRunner(log, jobs.NewMemoryRegistry(log, 0), orch, store, jobs.RunnerConfig{
		MaxConcurrency: 2,
		Now:            func() time.Time { return submittedAt },
	})
	svc := NewWorkoutService(log, users.NewUserRepo(db, log), programRepo, runner)
	svc.(*workoutService).now = func() time.Time { return submittedAt }
	return &fixture{db: db, runner: runner, svc: svc, programs: programRepo}
}

func wantAPIErr(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("want api error %s, got %v", code, err)
	}
	if apiErr.Status != status || apiErr.Code != code {
		t.Fatalf("want %d %s, got %d %s", status, code, apiErr.Status, apiErr.Code)
	}
}

func TestCreateUserWorkoutEndToEnd(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	u := testutil.SeedUser(t, ctx, db, "svc-"+uuid.NewString()+"@example.com", true)
	fx := newFixture(t, db, workouttest.ThirtyDays(u.ID.String()))

	jobID, err := fx.svc.CreateUserWorkout(ctx, u.ID)
	if err != nil {
		t.Fatalf("CreateUserWorkout: %v", err)
	}
	if want := jobs.NewJobID(u.ID, submittedAt); jobID != want {
		t.Fatalf("job id: want=%s got=%s", want, jobID)
	}
	fx.runner.Wait()

	status, err := fx.svc.GetJobStatus(ctx, u.ID, jobID)
	if err != nil {
		t.Fatalf("GetJobStatus: %v", err)
	}
	if status.Status != jobs.StateCompleted || status.WorkoutPlan == nil {
		t.Fatalf("job not completed: %+v", status)
	}
	if len(status.WorkoutPlan.Plan) != domain.TotalDays {
		t.Fatalf("plan days: %d", len(status.WorkoutPlan.Plan))
	}

	other, err := fx.svc.GetJobStatus(ctx, uuid.New(), jobID)
	if err != nil || other.Status != jobs.StateNotFound {
		t.Fatalf("foreign job should read as not found: %+v %v", other, err)
	}

	doc, err := fx.svc.GetUserWorkout(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserWorkout: %v", err)
	}
	if len(doc.Plan) != domain.TotalDays || doc.TotalDays != domain.TotalDays {
		t.Fatalf("persisted plan: %d days, total %d", len(doc.Plan), doc.TotalDays)
	}
	for i, d := range doc.Plan {
		if d.Day != i+1 {
			t.Fatalf("day %d out of order at %d", d.Day, i)
		}
		if d.Kind == domain.DayRest && len(d.Workout) != 0 {
			t.Fatalf("rest day %d carries details", d.Day)
		}
	}
	if doc.NotesFromCoach != "Stay hydrated" {
		t.Fatalf("notes: %q", doc.NotesFromCoach)
	}

	_, err = fx.svc.CreateUserWorkout(ctx, u.ID)
	wantAPIErr(t, err, http.StatusConflict, "workout_exists")
}

func TestCreateUserWorkoutRejections(t *testing.T) {
	ctx := context.Background()
	stages := workouttest.NewFakeStages()
	fx := newFixture(t, testutil.DB(t), stages)

	_, err := fx.svc.CreateUserWorkout(ctx, uuid.New())
	wantAPIErr(t, err, http.StatusNotFound, "user_not_found")

	fresh := testutil.SeedUser(t, ctx, fx.db, "fresh-"+uuid.NewString()+"@example.com", false)
	_, err = fx.svc.CreateUserWorkout(ctx, fresh.ID)
	wantAPIErr(t, err, http.StatusBadRequest, "profile_incomplete")

	_, err = fx.svc.GetUserWorkout(ctx, fresh.ID)
	wantAPIErr(t, err, http.StatusNotFound, "workout_not_found")

	if len(stages.Calls()) != 0 {
		t.Fatalf("rejected submissions must not reach the model")
	}
}

func TestUnknownJobStatus(t *testing.T) {
	fx := newFixture(t, testutil.DB(t), workouttest.NewFakeStages())
	status, err := fx.svc.GetJobStatus(context.Background(), uuid.New(), "job_missing_1")
	if err != nil || status.Status != jobs.StateNotFound {
		t.Fatalf("want not_found, got %+v %v", status, err)
	}
}

type failingDays struct {
	programs.ProgramRepo
}

func (f failingDays) CreateDays(dbc dbctx.Context, days []*domain.WorkoutDay) ([]*domain.WorkoutDay, error) {
	return nil, errors.New("disk full")
}

func TestSavePlanRollsBackOnDayFailure(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := programs.NewProgramRepo(db, log)
	u := testutil.SeedUser(t, ctx, db, "rollback-"+uuid.NewString()+"@example.com", true)

	stages := workouttest.ThirtyDays(u.ID.String())
	set, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	plan, err := workout.NewOrchestrator(log, stages, prompts.NewStaticStore(set)).Generate(ctx, u.Profile(workouttest.StartDate))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	store := NewPlanStore(log, aggregates.NewGormTxRunner(db), failingDays{ProgramRepo: repo})
	if _, err := store.SavePlan(ctx, u.ID, plan); err == nil {
		t.Fatalf("SavePlan should fail")
	}
	exists, err := repo.ExistsForUser(dbctx.Background(ctx), u.ID)
	if err != nil {
		t.Fatalf("ExistsForUser: %v", err)
	}
	if exists {
		t.Fatalf("program row survived a failed transaction")
	}
}
