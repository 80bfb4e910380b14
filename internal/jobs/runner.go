package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/observability"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

// Generator produces a full plan for a profile.
type Generator interface {
	Generate(ctx context.Context, profile workout.Profile) (*workout.PlanDocument, error)
}

// PlanStore persists an accepted plan in one transaction and returns the new
// program id.
type PlanStore interface {
	SavePlan(ctx context.Context, userID uuid.UUID, plan *workout.PlanDocument) (uuid.UUID, error)
}

const DefaultMaxConcurrency = 8

type RunnerConfig struct {
	// MaxConcurrency bounds how many jobs talk to the generative service at
	// once. Queued jobs stay in processing.
	MaxConcurrency int
	// Now stamps job ids and creation times. Defaults to time.Now.
	Now func() time.Time
}

// Runner accepts submissions, runs each one on its own goroutine and records
// the outcome in the registry.
type Runner struct {
	registry Registry
	gen      Generator
	store    PlanStore
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	now      func() time.Time
	log      *logger.Logger
}

func NewRunner(log *logger.Logger, registry Registry, gen Generator, store PlanStore, cfg RunnerConfig) *Runner {
	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		registry: registry,
		gen:      gen,
		store:    store,
		sem:      semaphore.NewWeighted(int64(limit)),
		now:      now,
		log:      log.With("component", "JobRunner"),
	}
}

// Submit registers a processing job and starts it in the background. It
// returns as soon as the job is visible to Status. The background work is
// detached from ctx cancellation.
func (r *Runner) Submit(ctx context.Context, profile workout.Profile) (string, error) {
	now := r.now()
	id := NewJobID(profile.UserID, now)
	job := Job{
		ID:        id,
		UserID:    profile.UserID,
		State:     StateProcessing,
		CreatedAt: now.UTC(),
	}
	if err := r.registry.Create(ctx, job); err != nil {
		return "", fmt.Errorf("register job: %w", err)
	}
	observability.Current().IncJob(string(StateProcessing))
	r.log.Info("Job submitted", "job_id", id, "user_id", profile.UserID.String())

	bg := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go r.run(bg, id, profile)
	return id, nil
}

// Status reports a job by id. Unknown ids yield the not_found view.
func (r *Runner) Status(ctx context.Context, id string) (Status, error) {
	job, err := r.registry.Get(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return NotFoundStatus(), nil
	}
	if err != nil {
		return Status{}, err
	}
	return job.Status(), nil
}

// Lookup returns the stored job record.
func (r *Runner) Lookup(ctx context.Context, id string) (Job, error) {
	return r.registry.Get(ctx, id)
}

// Wait blocks until every submitted job has finished. It cancels nothing.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, id string, profile workout.Profile) {
	defer r.wg.Done()
	log := r.log.With("job_id", id)

	ctx, span := observability.Tracer().Start(ctx, "workout.job", trace.WithAttributes(attribute.String("job.id", id)))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Job panic", "panic", rec)
			err := workout.NewError(workout.KindInternal, "jobs.run", fmt.Sprintf("panic: %v", rec), nil)
			span.SetStatus(codes.Error, "panic")
			r.fail(ctx, log, id, err)
		}
	}()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		r.fail(ctx, log, id, workout.Wrap(workout.KindInternal, "jobs.acquire", err))
		return
	}
	defer r.sem.Release(1)

	m := observability.Current()
	m.JobStarted()
	defer m.JobFinished()

	plan, err := r.gen.Generate(ctx, profile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(workout.KindOf(err)))
		r.fail(ctx, log, id, err)
		return
	}

	programID, err := r.persist(ctx, profile.UserID, plan)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(workout.KindPersistenceFailure))
		r.fail(ctx, log, id, workout.Wrap(workout.KindPersistenceFailure, "jobs.persist", err))
		return
	}

	r.finish(ctx, log, id, Terminal{
		State:     StateCompleted,
		Plan:      plan,
		ProgramID: &programID,
		At:        r.now().UTC(),
	})
	log.Info("Job completed", "program_id", programID.String(), "days", len(plan.Plan))
}

func (r *Runner) persist(ctx context.Context, userID uuid.UUID, plan *workout.PlanDocument) (uuid.UUID, error) {
	ctx, span := observability.Tracer().Start(ctx, "workout.persist")
	defer span.End()
	start := time.Now()
	id, err := r.store.SavePlan(ctx, userID, plan)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
	}
	observability.Current().ObservePersist(outcome, time.Since(start))
	return id, err
}

func (r *Runner) fail(ctx context.Context, log *logger.Logger, id string, err error) {
	log.Warn("Job failed", "kind", workout.KindOf(err), "error", err)
	r.finish(ctx, log, id, Terminal{
		State:     StateFailed,
		Error:     workout.Describe(err),
		ErrorKind: workout.KindOf(err),
		At:        r.now().UTC(),
	})
}

func (r *Runner) finish(ctx context.Context, log *logger.Logger, id string, t Terminal) {
	if err := r.registry.SetTerminal(ctx, id, t); err != nil {
		log.Error("Failed to record job outcome", "state", t.State, "error", err)
		return
	}
	observability.Current().IncJob(string(t.State))
}
