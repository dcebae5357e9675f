package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk. Each successful
// reload is delivered on Changes; parse and validation failures go to Errors
// and the previous config stays in effect.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	Changes chan *Config
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching path. The directory is watched rather than the file so
// editors that replace the file on save are still seen.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		watcher: fw,
		path:    abs,
		Changes: make(chan *Config, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

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
	defer close(w.Changes)
	defer close(w.Errors)

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

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
			timer.Reset(reloadDebounce)
		case <-timer.C:
			cfg, err := Load(w.path)
			if err != nil {
				w.send(w.Errors, err)
				continue
			}
			w.sendConfig(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.send(w.Errors, err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) send(ch chan error, err error) {
	select {
	case ch <- err:
	case <-w.closeCh:
	}
}

func (w *Watcher) sendConfig(cfg *Config) {
	select {
	case w.Changes <- cfg:
	case <-w.closeCh:
	}
}
