package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// ChangeKind says which reload a file edit calls for.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	// ChangeEngine is an edit to the engine tunables file.
	ChangeEngine
	// ChangeScript is an edit to a tengo script.
	ChangeScript
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeEngine:
		return "engine"
	case ChangeScript:
		return "script"
	}
	return "none"
}

// Change is one debounced edit.
type Change struct {
	Kind ChangeKind
	Path string
}

// Classify maps a path to the reload it needs. Yaml files other than the
// engine tunables are not read by anything and classify as ChangeNone.
func Classify(path string) ChangeKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.EqualFold(base, strings.TrimSuffix(EngineFile, filepath.Ext(EngineFile))) {
			return ChangeEngine
		}
	case ".tengo":
		return ChangeScript
	}
	return ChangeNone
}

// Watcher turns fsnotify events in the config directories into Changes for
// the game loop to drain.
type Watcher struct {
	fs      *fsnotify.Watcher
	Changes chan Change
	Errors  chan error
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fs,
		Changes: make(chan Change, 16),
		Errors:  make(chan error, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and closes both channels. Repeated calls are
// no-ops.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fs.Close()
		<-w.done
		close(w.Changes)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	var d debouncer
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			c, ok := d.accept(ev, time.Now())
			if !ok {
				continue
			}
			select {
			case w.Changes <- c:
			case <-w.stop:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.stop:
			return
		}
	}
}

// debouncer drops chmod-only events, unclassified files and repeats of the
// same path within watchDebounce. Editors often write a file in several
// steps.
type debouncer struct {
	last map[string]time.Time
}

func (d *debouncer) accept(ev fsnotify.Event, now time.Time) (Change, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return Change{}, false
	}
	kind := Classify(ev.Name)
	if kind == ChangeNone {
		return Change{}, false
	}
	if d.last == nil {
		d.last = make(map[string]time.Time)
	}
	if t, ok := d.last[ev.Name]; ok && now.Sub(t) < watchDebounce {
		return Change{}, false
	}
	d.last[ev.Name] = now
	return Change{Kind: kind, Path: ev.Name}, true
}
