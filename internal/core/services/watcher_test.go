package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/extract"
	"github.com/bookwise-ai/bookwise/internal/extract/plaintext"
)

// fakeLibrary records AddBook calls; other operations are unused by the
// watcher.
type fakeLibrary struct {
	mu    sync.Mutex
	added []string
	err   error
}

func (f *fakeLibrary) AddBook(_ context.Context, path string, _ domain.BookInfo) (*domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, path)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Book{ID: "b1", Title: filepath.Base(path), Status: domain.StatusIndexed}, nil
}

func (f *fakeLibrary) GetBook(context.Context, string) (*domain.Book, error) { return nil, nil }
func (f *fakeLibrary) ListBooks(context.Context) ([]*domain.Book, error) { return nil, nil }
func (f *fakeLibrary) Reindex(context.Context, string) (*domain.Book, error) { return nil, nil }
func (f *fakeLibrary) RemoveBook(context.Context, string) error { return nil }
func (f *fakeLibrary) Ask(context.Context, string, string, int) (*domain.Answer, error) {
	return nil, nil
}
func (f *fakeLibrary) Search(context.Context, string, string, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (f *fakeLibrary) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.added...)
}

func newTestWatcher(library *fakeLibrary) *Watcher {
	w := NewWatcher(library, extract.NewRegistry(plaintext.New()))
	w.SetSettleDelay(50 * time.Millisecond)
	return w
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_IngestsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preexisting.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))

	library := &fakeLibrary{}
	w := newTestWatcher(library)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Watch(ctx, dir)
		close(done)
	}()

	assert.True(t, waitFor(t, 2*time.Second, func() bool {
		return len(library.paths()) == 1
	}))
	assert.Equal(t, path, library.paths()[0])

	cancel()
	<-done
}

func TestWatcher_IngestsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	library := &fakeLibrary{}
	w := newTestWatcher(library)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Watch(ctx, dir)
		close(done)
	}()

	// Give the watcher time to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(dir, "dropped.txt")
	require.NoError(t, os.WriteFile(path, []byte("new arrival"), 0600))

	assert.True(t, waitFor(t, 3*time.Second, func() bool {
		return len(library.paths()) == 1
	}))

	cancel()
	<-done
}

func TestWatcher_SkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{1}, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ok"), 0600))

	library := &fakeLibrary{}
	w := newTestWatcher(library)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Watch(ctx, dir)
		close(done)
	}()

	require.True(t, waitFor(t, 2*time.Second, func() bool {
		return len(library.paths()) == 1
	}))
	assert.Equal(t, "notes.txt", filepath.Base(library.paths()[0]))

	// The unsupported file never arrives.
	time.Sleep(150 * time.Millisecond)
	assert.Len(t, library.paths(), 1)

	cancel()
	<-done
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := newTestWatcher(&fakeLibrary{})

	err := w.Watch(context.Background(), "/nonexistent/dir")

	assert.Error(t, err)
}
