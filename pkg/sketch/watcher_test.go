package sketch

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func startWatcher(t *testing.T, files []string, debounce time.Duration, onChange func() error, onError func(error)) *fileWatcher {
	t.Helper()
	w, err := newFileWatcher(files, debounce, onChange, onError)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	w.Start()
	t.Cleanup(w.Stop)
	// Give the watcher time to start.
	time.Sleep(100 * time.Millisecond)
	return w
}

func TestFileWatcherDetectsChanges(t *testing.T) {
	configDir, scriptDir := t.TempDir(), t.TempDir()
	configPath := filepath.Join(configDir, "sketch.lua")
	scriptPath := filepath.Join(scriptDir, "draw.lua")
	writeFile(t, configPath, "initial")
	writeFile(t, scriptPath, "initial")

	var changes atomic.Int32
	startWatcher(t, []string{configPath, scriptPath}, 50*time.Millisecond, func() error {
		changes.Add(1)
		return nil
	}, nil)

	writeFile(t, scriptPath, "modified")
	time.Sleep(200 * time.Millisecond)
	if got := changes.Load(); got != 1 {
		t.Fatalf("expected 1 change after script write, got %d", got)
	}

	writeFile(t, configPath, "modified")
	time.Sleep(200 * time.Millisecond)
	if got := changes.Load(); got != 2 {
		t.Errorf("expected 2 changes after config write, got %d", got)
	}
}

func TestFileWatcherDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draw.lua")
	writeFile(t, path, "initial")

	var changes atomic.Int32
	startWatcher(t, []string{path}, 100*time.Millisecond, func() error {
		changes.Add(1)
		return nil
	}, nil)

	for i := range 5 {
		writeFile(t, path, string(rune('a'+i)))
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(250 * time.Millisecond)

	if got := changes.Load(); got != 1 {
		t.Errorf("expected 1 change after debounced writes, got %d", got)
	}
}

func TestFileWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draw.lua")
	writeFile(t, path, "initial")

	var changes atomic.Int32
	startWatcher(t, []string{path}, 50*time.Millisecond, func() error {
		changes.Add(1)
		return nil
	}, nil)

	writeFile(t, filepath.Join(dir, "other.lua"), "unrelated")
	time.Sleep(200 * time.Millisecond)

	if got := changes.Load(); got != 0 {
		t.Errorf("expected no change for unrelated file, got %d", got)
	}
}

func TestFileWatcherReportsCallbackErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draw.lua")
	writeFile(t, path, "initial")

	boom := errors.New("reload failed")
	var got atomic.Value
	startWatcher(t, []string{path}, 50*time.Millisecond, func() error {
		return boom
	}, func(err error) {
		got.Store(err)
	})

	writeFile(t, path, "modified")
	time.Sleep(200 * time.Millisecond)

	if err, _ := got.Load().(error); !errors.Is(err, boom) {
		t.Errorf("onError got %v, want %v", err, boom)
	}
}

func TestFileWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draw.lua")
	writeFile(t, path, "initial")

	w, err := newFileWatcher([]string{path}, 0, nil, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if w.debounce != DefaultWatchDebounce {
		t.Errorf("debounce = %v, want %v", w.debounce, DefaultWatchDebounce)
	}

	// Stopping an unstarted watcher releases it without blocking.
	w.Stop()

	w, err = newFileWatcher([]string{path}, 0, nil, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	w.Start()
	w.Start()
	w.Stop()
	w.Stop()
}

func TestFileWatcherMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing", "draw.lua")
	if _, err := newFileWatcher([]string{missing}, 0, nil, nil); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
