package host

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watcher turns file system events on the watched files into triggers.
// Events are debounced so an editor's burst of writes yields one trigger.
type watcher struct {
	w        *fsnotify.Watcher
	targets  map[string]trigger // base name -> trigger
	debounce time.Duration
	fire     func(trigger)
	log      zerolog.Logger

	mu     sync.Mutex
	timers map[trigger]*time.Timer
}

// newWatcher watches the directories holding the target files. Watching the
// directory rather than the file survives editors that replace the file.
func newWatcher(targets map[string]trigger, debounce time.Duration, fire func(trigger), log zerolog.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch init: %w", err)
	}
	wt := &watcher{
		w:        fw,
		targets:  make(map[string]trigger, len(targets)),
		debounce: debounce,
		fire:     fire,
		log:      log,
		timers:   make(map[trigger]*time.Timer),
	}
	dirs := map[string]bool{}
	for path, t := range targets {
		wt.targets[filepath.Base(path)] = t
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		log.Debug().Str("dir", dir).Msg("watching")
	}
	return wt, nil
}

func (wt *watcher) run(ctx context.Context) {
	defer wt.w.Close()
	for {
		select {
		case <-ctx.Done():
			wt.stopTimers()
			return
		case ev, ok := <-wt.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if t, ok := wt.match(ev.Name); ok {
				wt.schedule(t)
			}
		case err, ok := <-wt.w.Errors:
			if !ok {
				return
			}
			wt.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// match maps an event path to its trigger. SQLite side files (db-wal,
// db-journal) count as changes to the database.
func (wt *watcher) match(name string) (trigger, bool) {
	base := filepath.Base(name)
	if t, ok := wt.targets[base]; ok {
		return t, true
	}
	for target, t := range wt.targets {
		if strings.HasPrefix(base, target+"-") {
			return t, true
		}
	}
	return 0, false
}

func (wt *watcher) schedule(t trigger) {
	wt.mu.Lock()
	defer wt.mu.Unlock()
	if timer, ok := wt.timers[t]; ok {
		timer.Stop()
	}
	wt.timers[t] = time.AfterFunc(wt.debounce, func() { wt.fire(t) })
}

func (wt *watcher) stopTimers() {
	wt.mu.Lock()
	defer wt.mu.Unlock()
	for _, timer := range wt.timers {
		timer.Stop()
	}
}
