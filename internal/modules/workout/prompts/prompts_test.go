package prompts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

func TestDefaultSetRendersPlaceholders(t *testing.T) {
	set, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	for n := 1; n <= StageCount; n++ {
		msg, err := set.Stage(n, "Name: Ana")
		if err != nil {
			t.Fatalf("Stage(%d): %v", n, err)
		}
		if strings.Contains(msg, ProfilePlaceholder) || strings.Contains(msg, SchemaPlaceholder) {
			t.Fatalf("stage %d left a placeholder: %s", n, msg)
		}
		if !strings.Contains(msg, "Name: Ana") || !strings.Contains(msg, `"notes_from_coach"`) {
			t.Fatalf("stage %d missing profile or schema", n)
		}
	}
	if _, err := set.Stage(4, ""); err == nil {
		t.Fatalf("expected error for stage 4")
	}
}

func TestParseRejectsIncompleteSets(t *testing.T) {
	cases := map[string]string{
		"no system":  "response_schema: x\nstages: [a, b, c]\n",
		"no schema":  "system: s\nstages: [a, b, c]\n",
		"two stages": "system: s\nresponse_schema: x\nstages: [a, b]\n",
		"blank":      "system: s\nresponse_schema: x\nstages: [a, ' ', c]\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestStoreReloadKeepsLastGoodSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	writeSet(t, path, "first")

	store, err := NewStore(logger.NewNop(), path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	before := store.Snapshot()

	if err := os.WriteFile(path, []byte("stages: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if store.Snapshot() != before {
		t.Fatalf("bad file must not replace the current set")
	}

	writeSet(t, path, "second")
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if store.Snapshot().SystemMessage() != "second" {
		t.Fatalf("reload did not apply")
	}
	if before.SystemMessage() != "first" {
		t.Fatalf("old snapshot must stay unchanged")
	}
}

func TestStoreWatchPicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	writeSet(t, path, "first")
	store, err := NewStore(logger.NewNop(), path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := store.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeSet(t, path, "watched")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if store.Snapshot().SystemMessage() == "watched" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("watcher did not reload, system=%q", store.Snapshot().SystemMessage())
}

func writeSet(t *testing.T, path, system string) {
	t.Helper()
	raw := "system: " + system + "\nresponse_schema: '{}'\nstages:\n  - one INPUT_JSON_HERE\n  - two\n  - three\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}
}
