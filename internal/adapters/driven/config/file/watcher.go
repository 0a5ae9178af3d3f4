package file

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-client/internal/logger"
)

// defaultSettle is how long the watcher waits after the last event before
// reloading. Editors often emit several events for a single save.
const defaultSettle = 150 * time.Millisecond

var log = logger.Scoped("config")

// Watcher calls a callback when the config file changes.
// It watches the parent directory so atomic saves (write temp, rename) are seen.
type Watcher struct {
	path     string
	onChange func()
	settle   time.Duration

	watcher *fsnotify.Watcher

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	done   chan struct{}
}

// NewWatcher starts watching path. onChange runs on a background goroutine
// once events for the file have settled.
func NewWatcher(path string, onChange func()) (*Watcher, error) {
	return newWatcher(path, onChange, defaultSettle)
}

func newWatcher(path string, onChange func(), settle time.Duration) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("config watcher: nil callback")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		settle:   settle,
		watcher:  fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debug("config file changed (%s)", event.Op)
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error: %v", err)
		}
	}
}

// schedule (re)arms the settle timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()

	if !closed {
		w.onChange()
	}
}

// Close stops watching. Pending reloads are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.done
	return err
}
