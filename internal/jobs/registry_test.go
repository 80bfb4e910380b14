package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

func TestMemoryRegistryLifecycle(t *testing.T) {
	reg := NewMemoryRegistry(logger.NewNop(), 0)
	ctx := context.Background()

	if _, err := reg.Get(ctx, "nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("want ErrJobNotFound, got %v", err)
	}
	if err := reg.SetTerminal(ctx, "nope", Terminal{State: StateFailed}); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("SetTerminal on unknown id: %v", err)
	}

	job := Job{ID: "job_a_1", UserID: uuid.New(), State: StateProcessing, CreatedAt: time.Now()}
	if err := reg.Create(ctx, job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := reg.SetTerminal(ctx, job.ID, Terminal{State: StateFailed, Error: "boom", At: time.Now()}); err != nil {
		t.Fatalf("SetTerminal: %v", err)
	}
	got, _ := reg.Get(ctx, job.ID)
	if got.State != StateFailed || got.Error != "boom" || got.UserID != job.UserID {
		t.Fatalf("unexpected job %+v", got)
	}

	// Same id again: the later record wins.
	if err := reg.Create(ctx, Job{ID: job.ID, State: StateProcessing}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ = reg.Get(ctx, job.ID)
	if got.State != StateProcessing {
		t.Fatalf("last write should win, got %s", got.State)
	}
}

func TestMemoryRegistryConcurrentAccess(t *testing.T) {
	reg := NewMemoryRegistry(logger.NewNop(), 0)
	ctx := context.Background()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("job_%d", i)
		_ = reg.Create(ctx, Job{ID: id, State: StateProcessing})
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = reg.SetTerminal(ctx, id, Terminal{State: StateCompleted, At: time.Now()})
		}()
		go func() {
			defer wg.Done()
			job, err := reg.Get(ctx, id)
			if err != nil {
				t.Errorf("Get %s: %v", id, err)
				return
			}
			if job.State != StateProcessing && job.State != StateCompleted {
				t.Errorf("torn read for %s: %q", id, job.State)
			}
		}()
	}
	wg.Wait()
	if reg.Len() != n {
		t.Fatalf("want %d jobs, got %d", n, reg.Len())
	}
}

func TestMemoryRegistrySweep(t *testing.T) {
	reg := NewMemoryRegistry(logger.NewNop(), time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	ctx := context.Background()

	_ = reg.Create(ctx, Job{ID: "old", State: StateProcessing})
	_ = reg.SetTerminal(ctx, "old", Terminal{State: StateCompleted, At: now.Add(-2 * time.Hour)})
	_ = reg.Create(ctx, Job{ID: "fresh", State: StateProcessing})
	_ = reg.SetTerminal(ctx, "fresh", Terminal{State: StateFailed, At: now.Add(-time.Minute)})
	_ = reg.Create(ctx, Job{ID: "running", State: StateProcessing, CreatedAt: now.Add(-5 * time.Hour)})

	if removed := reg.Sweep(); removed != 1 {
		t.Fatalf("want 1 removed, got %d", removed)
	}
	if _, err := reg.Get(ctx, "old"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("old job should be gone")
	}
	for _, id := range []string{"fresh", "running"} {
		if _, err := reg.Get(ctx, id); err != nil {
			t.Fatalf("%s should be kept: %v", id, err)
		}
	}

	keepAll := NewMemoryRegistry(logger.NewNop(), 0)
	_ = keepAll.Create(ctx, Job{ID: "x", State: StateProcessing})
	_ = keepAll.SetTerminal(ctx, "x", Terminal{State: StateCompleted, At: time.Unix(0, 0)})
	if keepAll.Sweep() != 0 || keepAll.Len() != 1 {
		t.Fatalf("zero retention keeps everything")
	}
}
