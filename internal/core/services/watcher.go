package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driving"
	"github.com/bookwise-ai/bookwise/internal/extract"
	"github.com/bookwise-ai/bookwise/internal/logger"
)

// DefaultSettleDelay is how long a new file must stop changing before it
// is ingested. Copies into the watched directory arrive as a create event
// followed by a stream of writes.
const DefaultSettleDelay = 2 * time.Second

// Watcher ingests books dropped into a watched directory. Files with an
// unsupported extension are ignored; files already in the library are
// skipped.
type Watcher struct {
	library  driving.LibraryService
	registry *extract.Registry

	settleDelay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a directory watcher over the library service.
func NewWatcher(library driving.LibraryService, registry *extract.Registry) *Watcher {
	return &Watcher{
		library:     library,
		registry:    registry,
		settleDelay: DefaultSettleDelay,
		pending:     make(map[string]*time.Timer),
	}
}

// SetSettleDelay overrides the quiet period before ingesting a new file.
func (w *Watcher) SetSettleDelay(d time.Duration) {
	w.settleDelay = d
}

// Watch ingests existing supported files in dir, then blocks processing
// filesystem events until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: %w", dir, domain.ErrInvalidInput)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Section("Watch Ingestion")
	logger.Info("Watching %s", dir)

	// Pick up files that were already in the directory.
	w.ingestExisting(ctx, dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.supported(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// ingestExisting processes supported files already present in the
// directory.
func (w *Watcher) ingestExisting(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("Failed to read %s: %v", dir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if w.supported(path) {
			w.ingest(ctx, path)
		}
	}
}

// schedule (re)arms the settle timer for a path. Each write event pushes
// ingestion back until the file has been quiet for the settle delay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settleDelay)
		return
	}
	w.pending[path] = time.AfterFunc(w.settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	logger.Info("Ingesting %s", filepath.Base(path))

	book, err := w.library.AddBook(ctx, path, domain.BookInfo{})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.Debug("Already in library: %s", path)
	case err != nil:
		logger.Warn("Failed to ingest %s: %v", path, err)
	default:
		logger.Info("Indexed %q (%d chunks)", book.Title, book.ChunkCount)
	}
}

// supported reports whether an extractor is registered for the file.
func (w *Watcher) supported(path string) bool {
	_, err := w.registry.ForFile(path)
	return err == nil
}
