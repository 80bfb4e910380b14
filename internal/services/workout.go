package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mand0ng/fitness-app-backend/internal/data/repos/programs"
	"github.com/mand0ng/fitness-app-backend/internal/data/repos/users"
	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/jobs"
	"github.com/mand0ng/fitness-app-backend/internal/pkg/dbctx"
	"github.com/mand0ng/fitness-app-backend/internal/platform/apierr"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

type WorkoutService interface {
	// CreateUserWorkout validates the user and submits a generation job. It
	// returns the job id without waiting for the plan.
	CreateUserWorkout(ctx context.Context, userID uuid.UUID) (string, error)
	// GetJobStatus reports a job owned by userID. Jobs of other users read as
	// not found.
	GetJobStatus(ctx context.Context, userID uuid.UUID, jobID string) (jobs.Status, error)
	GetUserWorkout(ctx context.Context, userID uuid.UUID) (*workout.PlanDocument, error)
}

type workoutService struct {
	log         *logger.Logger
	userRepo    users.UserRepo
	programRepo programs.ProgramRepo
	runner      *jobs.Runner
	now         func() time.Time
}

func NewWorkoutService(log *logger.Logger, userRepo users.UserRepo, programRepo programs.ProgramRepo, runner *jobs.Runner) WorkoutService {
	return &workoutService{
		log:         log.With("service", "WorkoutService"),
		userRepo:    userRepo,
		programRepo: programRepo,
		runner:      runner,
		now:         time.Now,
	}
}

func (s *workoutService) CreateUserWorkout(ctx context.Context, userID uuid.UUID) (string, error) {
	dbc := dbctx.Background(ctx)
	u, err := s.userRepo.GetByID(dbc, userID)
	if errors.Is(err, users.ErrNotFound) {
		return "", apierr.New(http.StatusNotFound, "user_not_found", err)
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !u.OnboardingComplete() {
		return "", apierr.New(http.StatusBadRequest, "profile_incomplete", errors.New("complete onboarding before generating a workout"))
	}
	exists, err := s.programRepo.ExistsForUser(dbc, u.ID)
	if err != nil {
		return "", fmt.Errorf("check existing program: %w", err)
	}
	if exists {
		return "", apierr.New(http.StatusConflict, "workout_exists", errors.New("user already has a workout program"))
	}

	profile := u.Profile(s.now().UTC().Format(workout.DateLayout))
	jobID, err := s.runner.Submit(ctx, profile)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	s.log.Info("Workout generation submitted", "user_id", u.ID, "job_id", jobID, "start_date", profile.StartDate)
	return jobID, nil
}

func (s *workoutService) GetJobStatus(ctx context.Context, userID uuid.UUID, jobID string) (jobs.Status, error) {
	job, err := s.runner.Lookup(ctx, jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		return jobs.NotFoundStatus(), nil
	}
	if err != nil {
		return jobs.Status{}, fmt.Errorf("lookup job: %w", err)
	}
	if job.UserID != userID {
		s.log.Warn("Job requested by another user", "job_id", jobID, "user_id", userID)
		return jobs.NotFoundStatus(), nil
	}
	return job.Status(), nil
}

func (s *workoutService) GetUserWorkout(ctx context.Context, userID uuid.UUID) (*workout.PlanDocument, error) {
	program, err := s.programRepo.GetLatestByUser(dbctx.Background(ctx), userID)
	if errors.Is(err, programs.ErrNotFound) {
		return nil, apierr.New(http.StatusNotFound, "workout_not_found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}
	return program.ToDocument(), nil
}
