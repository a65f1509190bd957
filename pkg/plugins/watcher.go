package plugins

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher refreshes a registry when the install root changes on disk.
// Events are debounced so a burst of writes triggers one refresh.
type Watcher struct {
	registry  *Registry
	fsw       *fsnotify.Watcher
	log       *logrus.Logger
	debounce  time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher starts watching the registry's install root. Close must be
// called to release the watch.
func NewWatcher(registry *Registry, log *logrus.Logger) (*Watcher, error) {
	if log == nil {
		log = logrus.New()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fsw.Add(registry.paths.InstallRoot); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch install root: %w", err)
	}

	w := &Watcher{
		registry: registry,
		fsw:      fsw,
		log:      log,
		debounce: 200 * time.Millisecond,
		done:     make(chan struct{}),
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timerC <-chan time.Time
	var timer *time.Timer

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("Watcher error: %v", err)

		case <-timerC:
			timerC = nil
			if err := w.registry.Refresh(); err != nil {
				w.log.Warnf("Refresh after filesystem change failed: %v", err)
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}
