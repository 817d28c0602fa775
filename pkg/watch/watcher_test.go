package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/dryscan/pkg/config"
)

func newTestWatcher(t *testing.T, dir string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, config.DefaultConfig(), debounce, WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, DefaultDebounce},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, DefaultDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tmpDir, tt.debounce)
			if w.fsWatcher == nil {
				t.Error("fsWatcher should not be nil")
			}
			if w.path != tmpDir {
				t.Errorf("path = %v, want %v", w.path, tmpDir)
			}
			if w.pending == nil {
				t.Error("pending map should be initialized")
			}
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
		})
	}
}

func TestNewWatcher_NilConfig(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil, 0)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	if w.config == nil {
		t.Error("config should default")
	}
}

func TestWatcher_Stop(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), config.DefaultConfig(), time.Second)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestWatcher_addTreeSkipsExcludedDirs(t *testing.T) {
	tmpDir := t.TempDir()
	for _, dir := range []string{"src/Models", "bin/Debug", "obj"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w := newTestWatcher(t, tmpDir, time.Second)
	if err := w.addTree(tmpDir); err != nil {
		t.Fatalf("addTree() error = %v", err)
	}

	watched := w.WatchedFiles()
	for _, want := range []string{tmpDir, filepath.Join(tmpDir, "src"), filepath.Join(tmpDir, "src", "Models")} {
		if !slices.Contains(watched, want) {
			t.Errorf("WatchedFiles() missing %s: %v", want, watched)
		}
	}
	for _, excluded := range []string{filepath.Join(tmpDir, "bin"), filepath.Join(tmpDir, "obj")} {
		if slices.Contains(watched, excluded) {
			t.Errorf("WatchedFiles() should not contain %s", excluded)
		}
	}
}

func TestWatcher_handleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	tests := []struct {
		name        string
		event       fsnotify.Event
		wantPending bool
	}{
		{"write C# file", fsnotify.Event{Name: filepath.Join(tmpDir, "Order.cs"), Op: fsnotify.Write}, true},
		{"create Java file", fsnotify.Event{Name: filepath.Join(tmpDir, "App.java"), Op: fsnotify.Create}, true},
		{"remove counts", fsnotify.Event{Name: filepath.Join(tmpDir, "Old.cs"), Op: fsnotify.Remove}, true},
		{"rename counts", fsnotify.Event{Name: filepath.Join(tmpDir, "Moved.cs"), Op: fsnotify.Rename}, true},
		{"chmod ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "Order.cs"), Op: fsnotify.Chmod}, false},
		{"unsupported file ignored", fsnotify.Event{Name: filepath.Join(tmpDir, "readme.txt"), Op: fsnotify.Write}, false},
		{"generated file excluded", fsnotify.Event{Name: filepath.Join(tmpDir, "Form.Designer.cs"), Op: fsnotify.Write}, false},
		{"excluded dir", fsnotify.Event{Name: filepath.Join(tmpDir, "obj", "Temp.cs"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.mu.Lock()
			w.pending = make(map[string]time.Time)
			w.mu.Unlock()

			w.handleEvent(tt.event)

			w.mu.Lock()
			_, found := w.pending[tt.event.Name]
			w.mu.Unlock()

			if found != tt.wantPending {
				t.Errorf("pending[%v] = %v, want %v", tt.event.Name, found, tt.wantPending)
			}
		})
	}
}

func TestWatcher_handleEventNewDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	newDir := filepath.Join(tmpDir, "Services")
	if err := os.Mkdir(newDir, 0755); err != nil {
		t.Fatal(err)
	}
	w.handleEvent(fsnotify.Event{Name: newDir, Op: fsnotify.Create})

	if !slices.Contains(w.WatchedFiles(), newDir) {
		t.Errorf("new directory should be watched: %v", w.WatchedFiles())
	}
	if len(w.pending) != 0 {
		t.Error("directories are not pending changes")
	}
}

func TestWatcher_processPendingBatches(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	var got [][]string
	w.SetCallback(func(changed []string) {
		got = append(got, changed)
	})

	a := filepath.Join(tmpDir, "B.cs")
	b := filepath.Join(tmpDir, "A.cs")
	w.mu.Lock()
	w.pending[a] = time.Now().Add(-100 * time.Millisecond)
	w.pending[b] = time.Now().Add(-100 * time.Millisecond)
	w.mu.Unlock()

	w.processPending()

	if len(got) != 1 {
		t.Fatalf("callback calls = %d, want 1", len(got))
	}
	if !slices.Equal(got[0], []string{b, a}) {
		t.Errorf("batch = %v, want sorted [%s %s]", got[0], b, a)
	}
	if len(w.pending) != 0 {
		t.Error("pending should be cleared after processing")
	}
}

func TestWatcher_processPendingWaitsForQuiet(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Hour)

	called := false
	w.SetCallback(func([]string) { called = true })

	w.mu.Lock()
	w.pending[filepath.Join(tmpDir, "Old.cs")] = time.Now().Add(-2 * time.Hour)
	w.pending[filepath.Join(tmpDir, "New.cs")] = time.Now()
	w.mu.Unlock()

	w.processPending()

	if called {
		t.Error("callback should wait until every pending file is quiet")
	}
	if len(w.pending) != 2 {
		t.Error("files should stay pending")
	}
}

func TestWatcher_processPendingNoCallback(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Millisecond)

	w.mu.Lock()
	w.pending[filepath.Join(tmpDir, "A.cs")] = time.Now().Add(-time.Second)
	w.mu.Unlock()

	w.processPending()

	if len(w.pending) != 0 {
		t.Error("pending should be cleared even without a callback")
	}
}

func TestWatcher_StartDetectsChange(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	var mu sync.Mutex
	var changed []string
	done := make(chan struct{}, 1)
	w.SetCallback(func(batch []string) {
		mu.Lock()
		changed = append(changed, batch...)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- w.Start(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(tmpDir, "Order.cs")
	if err := os.WriteFile(target, []byte("class Order {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}

	cancel()
	if err := <-errc; err != context.Canceled {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Contains(changed, target) {
		t.Errorf("changed = %v, want %s", changed, target)
	}
}
