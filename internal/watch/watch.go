// Package watch reloads classification inputs when their file changes and
// patches the live map.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/gridpath/internal/logger"
)

// Watcher calls a reload function once a watched file has been quiet for the
// debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	reload   func() error
	log      *zap.Logger

	// Reloaded receives the result of every reload. Sends never block; a
	// result is dropped when nobody is receiving.
	Reloaded chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New watches path. The parent directory is watched so that editors which
// replace the file by renaming are still seen.
func New(path string, debounce time.Duration, reload func() error) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		reload:   reload,
		log:      logger.Named("watch"),
		Reloaded: make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and waits for a running reload to finish.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.String("path", w.path), zap.Error(err))
		case <-timer.C:
			start := time.Now()
			err := w.reload()
			if err != nil {
				w.log.Error("reload failed", zap.String("path", w.path), zap.Error(err))
			} else {
				w.log.Info("reloaded", zap.String("path", w.path), zap.Duration("took", time.Since(start)))
			}
			select {
			case w.Reloaded <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
