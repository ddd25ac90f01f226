package sketch

import (
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the default debounce interval for file watch events.
const DefaultWatchDebounce = 500 * time.Millisecond

// fileWatcher calls onChange once a burst of writes to any of its files
// has settled.
type fileWatcher struct {
	watcher   *fsnotify.Watcher
	files     []string
	debounce  time.Duration
	onChange  func() error
	onError   func(error)
	stopCh    chan struct{}
	stoppedCh chan struct{}
	mu        sync.Mutex
	running   bool
}

// newFileWatcher watches the directories holding files. Editors that save
// by renaming replace the file, so watching the file itself would lose
// track of it.
func newFileWatcher(files []string, debounce time.Duration, onChange func() error, onError func(error)) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	abs := make([]string, 0, len(files))
	var dirs []string
	for _, f := range files {
		a, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		abs = append(abs, a)
		if dir := filepath.Dir(a); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return &fileWatcher{
		watcher:   watcher,
		files:     abs,
		debounce:  debounce,
		onChange:  onChange,
		onError:   onError,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine.
func (fw *fileWatcher) Start() {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return
	}
	fw.running = true
	fw.mu.Unlock()

	go fw.watchLoop()
}

// Stop stops the watcher and waits for its goroutine. The watcher cannot
// be restarted.
func (fw *fileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		fw.watcher.Close()
		return
	}
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.stoppedCh
}

func (fw *fileWatcher) watching(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return slices.Contains(fw.files, abs)
}

func (fw *fileWatcher) watchLoop() {
	defer close(fw.stoppedCh)
	defer fw.watcher.Close()

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-fw.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			fw.mu.Lock()
			fw.running = false
			fw.mu.Unlock()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.watching(event.Name) {
				continue
			}
			// Write, create and rename cover both in-place and atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(fw.debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			if fw.onChange != nil {
				if err := fw.onChange(); err != nil && fw.onError != nil {
					fw.onError(err)
				}
			}
			debounceTimer = nil
			debounceCh = nil

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(err)
			}
		}
	}
}
