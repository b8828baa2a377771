package plan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/disciplinebot/internal/logfields"
)

// Source serves the current plan table and can reload it when the file changes.
type Source struct {
	path         string
	table        atomic.Pointer[Table]
	debounceTime time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	reload  chan struct{}
	done    chan struct{}
}

// NewSource loads path once. The returned Source serves that table until Watch
// picks up a newer valid version.
func NewSource(path string) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve plan path: %w", err)
	}
	t, err := Load(absPath)
	if err != nil {
		return nil, err
	}
	s := &Source{
		path:         absPath,
		debounceTime: 500 * time.Millisecond,
		reload:       make(chan struct{}, 1),
	}
	s.table.Store(t)
	return s, nil
}

// NewStaticSource serves a fixed table; Watch is a no-op.
func NewStaticSource(t *Table) *Source {
	s := &Source{reload: make(chan struct{}, 1)}
	s.table.Store(t)
	return s
}

// Table returns the current plan.
func (s *Source) Table() *Table { return s.table.Load() }

// Lookup implements the plan lookup used by handlers.
func (s *Source) Lookup(day int) (Day, bool) { return s.Table().Lookup(day) }

// LastDay returns the highest day of the current plan.
func (s *Source) LastDay() int { return s.Table().LastDay() }

// Watch reloads the plan on file changes until ctx is canceled or Close is called.
// An invalid new version is logged and the previous table is kept.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	if s.watcher != nil {
		s.mu.Unlock()
		return fmt.Errorf("plan watcher already running")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors usually replace the file rather than write in place.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		s.mu.Unlock()
		return fmt.Errorf("failed to watch plan directory: %w", err)
	}
	s.watcher = watcher
	s.done = make(chan struct{})
	s.mu.Unlock()

	slog.Info("Watching plan file", logfields.Path(s.path))
	go s.watchLoop(ctx, watcher)
	go s.reloadLoop(ctx)
	return nil
}

// Close stops watching.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	name := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				select {
				case s.reload <- struct{}{}:
				default:
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Plan watcher error", logfields.Error(err))
		}
	}
}

func (s *Source) reloadLoop(ctx context.Context) {
	done := s.done
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-done:
			stop()
			return
		case <-s.reload:
			stop()
			timer = time.AfterFunc(s.debounceTime, s.Reload)
		}
	}
}

// Reload re-reads the plan file now.
func (s *Source) Reload() {
	if s.path == "" {
		return
	}
	t, err := Load(s.path)
	if err != nil {
		slog.Error("Failed to reload plan, keeping previous version", logfields.Path(s.path), logfields.Error(err))
		return
	}
	s.table.Store(t)
	slog.Info("Plan reloaded", logfields.Path(s.path), slog.Int("days", len(t.days)))
}
