package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"codewright/internal/logging"
)

// PromptWatcher watches .wright/prompts.yaml for changes and reloads the
// prompt templates, so template tuning does not require a restart.
type PromptWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	prompts     Prompts
	lastReload  time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewPromptWatcher creates a watcher over the prompts override file in the
// given config directory. The initial template set is loaded immediately.
func NewPromptWatcher(configDir string) (*PromptWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(configDir, "prompts.yaml")
	prompts, err := LoadPrompts(path)
	if err != nil {
		logging.Get(logging.CategoryConfig).Warn("prompts override unreadable, using defaults: %v", err)
	}

	return &PromptWatcher{
		watcher:     watcher,
		path:        path,
		prompts:     prompts,
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Prompts returns the current template set.
func (w *PromptWatcher) Prompts() Prompts {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.prompts
}

// Start begins watching. Non-blocking; events are handled in a goroutine.
// Watching the directory rather than the file survives editors that replace
// the file on save.
func (w *PromptWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	go w.loop()
	return nil
}

func (w *PromptWatcher) loop() {
	defer close(w.doneCh)
	log := logging.Get(logging.CategoryConfig)

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			if time.Since(w.lastReload) < w.debounceDur {
				w.mu.Unlock()
				continue
			}
			w.lastReload = time.Now()
			w.mu.Unlock()

			prompts, err := LoadPrompts(w.path)
			if err != nil {
				log.Warn("prompt reload failed, keeping previous set: %v", err)
				continue
			}
			w.mu.Lock()
			w.prompts = prompts
			w.mu.Unlock()
			log.Info("reloaded prompt templates from %s", w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error: %v", err)
		}
	}
}

// Stop halts the watcher and waits for the event loop to drain.
func (w *PromptWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}
