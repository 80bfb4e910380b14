package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

// RedisRegistry stores each job as one JSON value. Every write is a single
// SET, so per-key atomicity comes from Redis.
type RedisRegistry struct {
	rdb       redis.UniversalClient
	prefix    string
	retention time.Duration
	log       *logger.Logger
}

func NewRedisRegistry(log *logger.Logger, rdb redis.UniversalClient, prefix string, retention time.Duration) *RedisRegistry {
	if prefix == "" {
		prefix = "workout:"
	}
	return &RedisRegistry{
		rdb:       rdb,
		prefix:    prefix,
		retention: retention,
		log:       log.With("component", "RedisJobRegistry"),
	}
}

func (r *RedisRegistry) key(id string) string {
	return r.prefix + "job:" + id
}

func (r *RedisRegistry) Create(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	prev, err := r.rdb.SetArgs(ctx, r.key(job.ID), raw, redis.SetArgs{Get: true}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis set job: %w", err)
	}
	if prev != "" {
		r.log.Warn("Job id reused; previous record replaced", "job_id", job.ID)
	}
	return nil
}

func (r *RedisRegistry) Get(ctx context.Context, id string) (Job, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("redis get job: %w", err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return job, nil
}

// SetTerminal rewrites the record with the terminal state. Only the runner
// that created the job writes to it, so read-then-set does not race.
func (r *RedisRegistry) SetTerminal(ctx context.Context, id string, t Terminal) error {
	job, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	job.apply(t)
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(id), raw, r.retention).Err(); err != nil {
		return fmt.Errorf("redis set job: %w", err)
	}
	return nil
}
