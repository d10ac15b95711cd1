// Package watch re-runs a callback when files in a set of directories change.
//
// Events are debounced: a burst of writes (an editor saving through a temp
// file, a fix run rewriting several files) produces one callback with every
// changed path. Callbacks run on the event loop, so two never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/nrdb/cardlint/pkg/logger"
)

var log = logger.New("watch:watcher")

const defaultDebounce = 300 * time.Millisecond

// DefaultPatterns selects the files that trigger a callback when Config.Patterns is empty.
var DefaultPatterns = []string{"*.json"}

// defaultIgnores are editor swap and backup files.
var defaultIgnores = []string{
	".#*",
	"*~",
	"*.swp",
	"*.swo",
}

// Config holds the parameters for a Watcher.
type Config struct {
	// Dirs are watched non-recursively.
	Dirs []string
	// Patterns are doublestar globs matched against the base name of a
	// changed file. Empty means DefaultPatterns.
	Patterns []string
	// Debounce is the quiet period after the last event before OnChange runs.
	Debounce time.Duration
	// OnChange receives the sorted, deduplicated changed paths.
	OnChange func(ctx context.Context, changed []string) error
	// Stderr receives callback and watcher errors. Nil means os.Stderr.
	Stderr io.Writer
}

// Watcher dispatches debounced change callbacks. Run must be called once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	patterns []string
	debounce time.Duration
	stderr   io.Writer
	started  atomic.Bool
}

// New validates the config and starts watching its directories.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Dirs) == 0 {
		return nil, errors.New("watch: no directories to watch")
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	seen := make(map[string]bool)
	for _, dir := range cfg.Dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			fsw.Close() //nolint:errcheck
			return nil, fmt.Errorf("watch: resolve %s: %w", dir, err)
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		log.Printf("Watching %s", abs)
		if err := fsw.Add(abs); err != nil {
			fsw.Close() //nolint:errcheck
			return nil, fmt.Errorf("watch: add directory %s: %w", abs, err)
		}
	}

	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: patterns,
		debounce: debounce,
		stderr:   stderr,
	}, nil
}

// Run processes events until ctx is cancelled. It returns nil on cancellation
// and an error when the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}
			log.Printf("Change: %s %s", evt.Op, evt.Name)
			pending[evt.Name] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				fmt.Fprintf(w.stderr, "watch: callback error: %v\n", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) && !evt.Has(fsnotify.Remove) {
		return false
	}
	return w.matches(filepath.Base(evt.Name))
}

// matches reports whether a base name selects a callback.
func (w *Watcher) matches(name string) bool {
	for _, pat := range defaultIgnores {
		if matched, err := doublestar.Match(pat, name); err == nil && matched {
			return false
		}
	}
	for _, pat := range w.patterns {
		if matched, err := doublestar.Match(pat, name); err == nil && matched {
			return true
		}
	}
	return false
}
