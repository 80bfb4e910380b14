package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

var ErrJobNotFound = errors.New("job not found")

// Registry stores job status records. Implementations must make each write
// atomic per job id: a reader sees either the old or the new value.
type Registry interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
	SetTerminal(ctx context.Context, id string, t Terminal) error
}

const shardCount = 32

type shard struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// MemoryRegistry keeps jobs in process memory, spread over shards so polls
// and updates for different jobs rarely contend.
type MemoryRegistry struct {
	shards    [shardCount]*shard
	retention time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// NewMemoryRegistry returns an in-memory registry. With retention > 0,
// terminal jobs older than retention are eligible for Sweep; zero keeps
// everything.
func NewMemoryRegistry(log *logger.Logger, retention time.Duration) *MemoryRegistry {
	r := &MemoryRegistry{
		retention: retention,
		now:       time.Now,
		log:       log.With("component", "MemoryJobRegistry"),
	}
	for i := range r.shards {
		r.shards[i] = &shard{jobs: make(map[string]Job)}
	}
	return r
}

func (r *MemoryRegistry) shardFor(id string) *shard {
	return r.shards[xxhash.Sum64String(id)%shardCount]
}

func (r *MemoryRegistry) Create(ctx context.Context, job Job) error {
	s := r.shardFor(job.ID)
	s.mu.Lock()
	_, existed := s.jobs[job.ID]
	s.jobs[job.ID] = job
	s.mu.Unlock()
	if existed {
		r.log.Warn("Job id reused; previous record replaced", "job_id", job.ID)
	}
	return nil
}

func (r *MemoryRegistry) Get(ctx context.Context, id string) (Job, error) {
	s := r.shardFor(id)
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

func (r *MemoryRegistry) SetTerminal(ctx context.Context, id string, t Terminal) error {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.apply(t)
	s.jobs[id] = job
	return nil
}

// Len counts stored jobs.
func (r *MemoryRegistry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.jobs)
		s.mu.RUnlock()
	}
	return n
}

// Sweep drops terminal jobs that finished more than retention ago and
// returns how many were removed. Processing jobs are never dropped.
func (r *MemoryRegistry) Sweep() int {
	if r.retention <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.retention)
	removed := 0
	for _, s := range r.shards {
		s.mu.Lock()
		for id, job := range s.jobs {
			if job.State.Terminal() && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
				delete(s.jobs, id)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// StartJanitor sweeps periodically until ctx is done. It does nothing when
// retention is disabled.
func (r *MemoryRegistry) StartJanitor(ctx context.Context) {
	if r.retention <= 0 {
		return
	}
	interval := r.retention / 4
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					r.log.Debug("Expired jobs swept", "removed", n)
				}
			}
		}
	}()
}
