package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filesplit/internal/utils"

	"github.com/fsnotify/fsnotify"
)

// FileEvent reports a file that appeared or was rewritten under a
// watched directory and is ready to be split.
type FileEvent struct {
	Path      string
	Timestamp time.Time
}

// Watcher monitors a directory tree and emits one FileEvent per file
// after its writes have settled. A debounce window collapses the
// bursts of Create/Write events a single copy produces, so the
// consumer sees a file once, after it has stopped changing.
type Watcher struct {
	fsNotifyWatcher *fsnotify.Watcher
	watchedDirs     map[string]bool
	changeChan      chan FileEvent
	errorChan       chan error
	ctx             context.Context
	cancel          context.CancelFunc
	mu              sync.RWMutex
	debounce        time.Duration
	debouncer       map[string]*time.Timer
	debounceMu      sync.Mutex
}

// New creates a Watcher. debounce is the quiet period a file must go
// without events before it is reported; zero picks a 500ms default.
func New(debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		fsNotifyWatcher: fsWatcher,
		watchedDirs:     make(map[string]bool),
		changeChan:      make(chan FileEvent),
		errorChan:       make(chan error, 10),
		ctx:             ctx,
		cancel:          cancel,
		debounce:        debounce,
		debouncer:       make(map[string]*time.Timer),
	}, nil
}

// AddWatch watches path and all directories beneath it.
func (w *Watcher) AddWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if err := w.fsNotifyWatcher.Add(walkPath); err != nil {
				return err
			}
			w.watchedDirs[walkPath] = true
			log.Printf("Watching directory: %s", walkPath)
		}
		return nil
	})
}

func (w *Watcher) Start() {
	go w.handleEvents()
}

func (w *Watcher) handleEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsNotifyWatcher.Events:
			if !ok {
				return
			}
			w.processEvent(event)
		case err, ok := <-w.fsNotifyWatcher.Errors:
			if !ok {
				return
			}
			w.errorChan <- err
		}
	}
}

func (w *Watcher) processEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	// A new directory must be watched itself for events beneath it.
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := w.addDir(event.Name); err != nil {
				w.errorChan <- err
			}
		}
		return
	}

	w.debouncedSend(event.Name, func() {
		// The file may be gone again by the time the window closes.
		if !utils.IsRegularFile(event.Name) {
			return
		}
		select {
		case w.changeChan <- FileEvent{Path: event.Name, Timestamp: time.Now()}:
		case <-w.ctx.Done():
		}
	})
}

func (w *Watcher) addDir(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watchedDirs[path] {
		return nil
	}
	if err := w.fsNotifyWatcher.Add(path); err != nil {
		return err
	}
	w.watchedDirs[path] = true
	log.Printf("Watching directory: %s", path)
	return nil
}

// debouncedSend runs fn after the debounce window passes with no
// further events for path; an earlier pending run is cancelled.
func (w *Watcher) debouncedSend(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debouncer[path]; exists {
		timer.Stop()
	}

	w.debouncer[path] = time.AfterFunc(w.debounce, func() {
		fn()
		w.debounceMu.Lock()
		delete(w.debouncer, path)
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) Changes() <-chan FileEvent {
	return w.changeChan
}

func (w *Watcher) Errors() <-chan error {
	return w.errorChan
}

func (w *Watcher) Close() error {
	w.cancel()
	return w.fsNotifyWatcher.Close()
}
