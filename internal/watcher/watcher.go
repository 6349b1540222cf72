// Package watcher reports changes to graph source files.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/imyousuf/stringgraph/internal/logging"
	"github.com/imyousuf/stringgraph/internal/metrics"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event represents a debounced change to one watched file.
type Event struct {
	Path string
	Op   EventOp
	Time time.Time
}

// DefaultInclude matches the file names of every graph source format.
const DefaultInclude = "*.{jsonl,ndjson,yaml,yml,toml,sg}"

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Config holds configuration for the watcher.
type Config struct {
	// Paths are files or directories. A file is watched on its own; a
	// directory is watched recursively for names matching Include.
	Paths []string
	// Include holds glob patterns matched against base names of files in
	// watched directories. Empty means DefaultInclude.
	Include []string
	// Debounce is how long a path must stay quiet before its event is
	// emitted.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher watches graph source files for changes and emits debounced events.
type Watcher struct {
	cfg      Config
	include  []glob.Glob
	files    map[string]bool
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger

	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	closed bool
}

// New creates a watcher with the given configuration. Every path must
// exist.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("watcher: no paths to watch")
	}
	patterns := cfg.Include
	if len(patterns) == 0 {
		patterns = []string{DefaultInclude}
	}
	w := &Watcher{
		cfg:      cfg,
		files:    make(map[string]bool),
		debounce: cfg.Debounce,
		logger:   logging.OrDefault(cfg.Logger),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("watcher: bad include pattern %q: %w", p, err)
		}
		w.include = append(w.include, g)
	}
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watcher: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watcher: %w", err)
		}
		if info.IsDir() {
			w.dirs = append(w.dirs, abs)
		} else {
			w.files[abs] = true
		}
	}
	return w, nil
}

// Start begins watching configured paths and returns a channel of debounced
// events. The channel is closed when ctx is cancelled or the watcher is
// closed.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	// Files are watched through their directory so that editors replacing
	// the file by rename keep being seen.
	parents := make(map[string]bool)
	for f := range w.files {
		parents[filepath.Dir(f)] = true
	}
	for dir := range parents {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	for _, root := range w.dirs {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	out := make(chan Event, 100)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsw.Add(path)
	})
}

// Match reports whether an event for path concerns a watched source.
func (w *Watcher) Match(path string) bool {
	if w.files[path] {
		return true
	}
	for _, dir := range w.dirs {
		if !strings.HasPrefix(path, dir+string(filepath.Separator)) {
			continue
		}
		base := filepath.Base(path)
		for _, g := range w.include {
			if g.Match(base) {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Event) {
	defer close(out)

	pending := make(map[string]*time.Timer)
	var mu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()

	latest := make(map[string]Event)
	emit := func(path string) {
		defer wg.Done()
		mu.Lock()
		evt, ok := latest[path]
		delete(latest, path)
		delete(pending, path)
		mu.Unlock()
		if !ok {
			return
		}
		select {
		case out <- evt:
			metrics.WatcherEventsTotal.Inc()
		case <-ctx.Done():
		}
	}

	stopAll := func() {
		mu.Lock()
		for path, t := range pending {
			if t.Stop() {
				wg.Done()
			}
			delete(pending, path)
		}
		mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			stopAll()
			return

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				stopAll()
				return
			}

			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			// New directories under a watched root are watched too.
			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(fsEvent.Name)
					continue
				}
			}
			if !w.Match(fsEvent.Name) {
				continue
			}

			path := fsEvent.Name
			mu.Lock()
			latest[path] = Event{Path: path, Op: op, Time: time.Now()}
			if t, exists := pending[path]; exists && t.Stop() {
				wg.Done()
			}
			wg.Add(1)
			pending[path] = time.AfterFunc(w.debounce, func() { emit(path) })
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				stopAll()
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
