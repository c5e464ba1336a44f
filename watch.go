package warpgate

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports changes to a configuration file. Editors often replace
// files instead of writing them, so the containing directory is watched and
// events are filtered by name.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	// Events receives the file path after each debounced change.
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	doneCh  chan struct{}
	once    sync.Once
	pending bool
}

// NewWatcher starts watching the configuration file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		path:    abs,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.doneCh
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.doneCh)
	}()
	var last time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			now := time.Now()
			if now.Sub(last) < watchDebounce {
				continue
			}
			last = now
			select {
			case w.Events <- w.path:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// Poll drains pending change events and watch errors without blocking and
// reloads the engine configuration once if any change arrived. A reload
// refused because a transition is in flight is retried on a later call. Watch
// errors are returned after the reload decision so no change is lost.
func (w *Watcher) Poll(e *Engine) error {
	changed := w.pending
	var watchErr error
drain:
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				break drain
			}
			changed = true
		case err, ok := <-w.Errors:
			if !ok {
				break drain
			}
			watchErr = errors.Join(watchErr, err)
		default:
			break drain
		}
	}
	if !changed {
		return watchErr
	}
	if e.machine.InFlight() {
		w.pending = true
		return watchErr
	}
	w.pending = false
	return errors.Join(watchErr, e.ReloadFrom(w.path))
}
