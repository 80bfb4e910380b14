package workout

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/mand0ng/fitness-app-backend/internal/domain/workout"
	"github.com/mand0ng/fitness-app-backend/internal/modules/workout/prompts"
	"github.com/mand0ng/fitness-app-backend/internal/observability"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
	"github.com/mand0ng/fitness-app-backend/internal/platform/openai"
)

// StageCaller performs one conversation turn against the generative service.
type StageCaller interface {
	CallStage(ctx context.Context, messages []openai.Message) (string, error)
}

// State is the orchestrator's position in a run.
type State string

const (
	StateStage1  State = "stage1"
	StateStage2  State = "stage2"
	StateStage3  State = "stage3"
	StateMerging State = "merging"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

var stageStates = [prompts.StageCount]State{StateStage1, StateStage2, StateStage3}

// Orchestrator turns a profile into a 30-day plan with three chained stage
// calls. It holds no per-run state; every Generate call owns its history.
type Orchestrator struct {
	client  StageCaller
	prompts *prompts.Store
	log     *logger.Logger
}

func NewOrchestrator(log *logger.Logger, client StageCaller, store *prompts.Store) *Orchestrator {
	return &Orchestrator{
		client:  client,
		prompts: store,
		log:     log.With("service", "PlanOrchestrator"),
	}
}

// run is the state of a single Generate call.
type run struct {
	state   State
	set     *prompts.Set
	profile string
	history []openai.Message
	parts   []domain.PartialPlan
}

// Generate runs stage 1 to 3 in order, then merges. The first failure ends
// the run with the originating typed error and nothing is retried.
func (o *Orchestrator) Generate(ctx context.Context, profile domain.Profile) (*domain.PlanDocument, error) {
	ctx, span := observability.Tracer().Start(ctx, "workout.generate", trace.WithAttributes(
		attribute.String("workout.start_date", profile.StartDate),
	))
	defer span.End()

	set := o.prompts.Snapshot()
	r := &run{
		state:   StateStage1,
		set:     set,
		profile: ProfileText(profile),
		history: []openai.Message{{Role: openai.RoleSystem, Content: set.SystemMessage()}},
		parts:   make([]domain.PartialPlan, 0, prompts.StageCount),
	}
	log := o.log.With("user_id", profile.UserID.String(), "prompts", set.Fingerprint())
	log.Info("Plan generation started")

	var (
		plan *domain.PlanDocument
		err  error
	)
	for r.state != StateDone && r.state != StateFailed {
		switch r.state {
		case StateStage1, StateStage2, StateStage3:
			err = o.stage(ctx, r, stageNumber(r.state))
			if err != nil {
				r.state = StateFailed
				continue
			}
			r.state = next(r.state)
		case StateMerging:
			plan, err = domain.Merge(r.parts[0], r.parts[1], r.parts[2])
			if err != nil {
				r.state = StateFailed
				continue
			}
			r.state = StateDone
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
		log.Warn("Plan generation failed", "kind", domain.KindOf(err), "error", err)
		return nil, err
	}
	log.Info("Plan generation finished", "days", len(plan.Plan))
	return plan, nil
}

func (o *Orchestrator) stage(ctx context.Context, r *run, n int) error {
	name := string(r.state)
	ctx, span := observability.Tracer().Start(ctx, "workout."+name)
	defer span.End()
	start := time.Now()

	userMsg, err := r.set.Stage(n, r.profile)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "workout."+name, err)
	}
	r.history = append(r.history, openai.Message{Role: openai.RoleUser, Content: userMsg})

	// Pass a capped view so callers that keep the slice cannot see later turns.
	raw, err := o.client.CallStage(ctx, r.history[:len(r.history):len(r.history)])
	if err == nil {
		var part domain.PartialPlan
		part, err = domain.ParsePartial(raw)
		if err == nil {
			r.parts = append(r.parts, part)
			r.history = append(r.history, openai.Message{Role: openai.RoleAssistant, Content: raw})
			span.SetAttributes(attribute.Int("workout.days", len(part.Plan)))
		}
	}

	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		err = fmt.Errorf("%s: %w", name, err)
	}
	observability.Current().ObserveStage(name, outcome, time.Since(start))
	o.log.Debug("Stage finished", "stage", name, "outcome", outcome, "duration", time.Since(start).String())
	return err
}

func stageNumber(s State) int {
	for i, st := range stageStates {
		if st == s {
			return i + 1
		}
	}
	return 0
}

func next(s State) State {
	switch s {
	case StateStage1:
		return StateStage2
	case StateStage2:
		return StateStage3
	default:
		return StateMerging
	}
}
