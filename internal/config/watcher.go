package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/termmark/internal/event"
)

// TopicReloaded is published after a successful live reload.
const TopicReloaded event.Topic = "config.reloaded"

// debounceDelay coalesces the write bursts editors produce when saving.
const debounceDelay = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path string
	bus  *event.Bus
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	current Config
	onErr   func(error)
	closed  bool

	done chan struct{}
}

// NewWatcher starts watching path. The containing directory is watched
// rather than the file itself, so saves that replace the file (the
// common editor rename dance) keep working.
func NewWatcher(path string, initial Config, bus *event.Bus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		bus:     bus,
		fsw:     fsw,
		current: initial,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// SetErrorHandler installs a callback for reload failures. A config
// file that fails to parse keeps the previous configuration.
func (w *Watcher) SetErrorHandler(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErr = fn
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerC = timer.C
			} else {
				timer.Reset(debounceDelay)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)

	w.mu.Lock()
	onErr := w.onErr
	if err == nil {
		w.current = cfg
	}
	w.mu.Unlock()

	if err != nil {
		if onErr != nil {
			onErr(err)
		}
		return
	}

	if w.bus != nil {
		w.bus.Publish(TopicReloaded, w.path, map[string]any{
			"level":      cfg.Log.Level,
			"scrollback": cfg.Terminal.Scrollback,
		})
	}
}
