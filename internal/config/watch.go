package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/op/go-logging.v1"

	"laptev/internal/worker"
)

// settle lets editors finish a save before the file is re-read.
const settle = 100 * time.Millisecond

// Watcher reloads the host config whenever its file changes.
type Watcher struct {
	worker.Worker

	path     string
	fsw      *fsnotify.Watcher
	onChange func(*Host)
	log      *logging.Logger
}

// WatchHost starts watching path. onChange receives every config that
// parses and validates; broken edits are logged and skipped.
func WatchHost(path string, log *logging.Logger, onChange func(*Host)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace the file, so watch the directory.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{path: filepath.Clean(path), fsw: fsw, onChange: onChange, log: log}
	w.Go(w.run)
	return w, nil
}

// Halt stops the watcher.
func (w *Watcher) Halt() {
	_ = w.fsw.Close()
	w.Worker.Halt()
}

func (w *Watcher) run() {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-w.HaltCh():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			timerCh = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warningf("watching %s: %v", w.path, err)
		case <-timerCh:
			timerCh = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	c, err := LoadHostFile(w.path)
	if err != nil {
		w.log.Warningf("ignoring config change: %v", err)
		return
	}
	w.log.Notice("config reloaded")
	w.onChange(c)
}
