package prompts

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

// Store hands out the current prompt Set. Swaps are atomic so a job never
// sees a half-loaded configuration.
type Store struct {
	current atomic.Pointer[Set]
	path    string
	log     *logger.Logger
}

// NewStore loads the prompt set from path, or the embedded default when path
// is empty.
func NewStore(log *logger.Logger, path string) (*Store, error) {
	var (
		set *Set
		err error
	)
	if path == "" {
		set, err = Default()
	} else {
		set, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, log: log.With("component", "PromptStore")}
	s.current.Store(set)
	s.log.Info("Prompts loaded", "source", s.source(), "fingerprint", set.Fingerprint())
	return s, nil
}

// NewStaticStore wraps a fixed set, mostly for tests.
func NewStaticStore(set *Set) *Store {
	s := &Store{log: logger.NewNop()}
	s.current.Store(set)
	return s
}

func (s *Store) Snapshot() *Set {
	return s.current.Load()
}

func (s *Store) source() string {
	if s.path == "" {
		return "embedded"
	}
	return s.path
}

// Reload re-reads the backing file. A file that fails to parse leaves the
// current set in place.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	set, err := LoadFile(s.path)
	if err != nil {
		s.log.Warn("Prompt reload rejected", "path", s.path, "error", err)
		return err
	}
	s.current.Store(set)
	s.log.Info("Prompts reloaded", "path", s.path, "fingerprint", set.Fingerprint())
	return nil
}

// Watch reloads the set whenever the backing file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		_ = fsw.Close()
		return err
	}
	target := filepath.Clean(s.path)

	go func() {
		defer fsw.Close()
		const debounce = 200 * time.Millisecond
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					pending = time.After(debounce)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				s.log.Error("Prompt watcher error", "error", err)
			case <-pending:
				pending = nil
				_ = s.Reload()
			}
		}
	}()
	s.log.Info("Watching prompts", "path", s.path)
	return nil
}
