// Package watch regenerates output when schema files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/logger"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called with the changed paths once a burst of events settles.
type Handler func(ctx context.Context, changed []string) error

// Watcher watches schema files and the Go package directories given to it.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
	handler  Handler
	// warn throttles repeated watcher errors.
	warn rate.Sometimes
}

// New watches paths. Files are watched through their parent directory so
// that editors replacing a file by rename are noticed; a directory argument
// matches any .go file inside it.
func New(paths []string, debounce time.Duration, handler Handler) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		fs:       fs,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
		handler:  handler,
		warn:     rate.Sometimes{Interval: 10 * time.Second},
	}

	watched := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		info, err := os.Stat(p)
		if err != nil {
			fs.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", p)
		}
		dir := filepath.Dir(p)
		if info.IsDir() {
			w.dirs[p] = true
			dir = p
		} else {
			w.files[p] = true
		}
		if watched[dir] {
			continue
		}
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		watched[dir] = true
	}
	return w, nil
}

// Run processes events until ctx is cancelled, then releases the watcher.
// Handler errors are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debugw("Watcher detected change", logger.FieldFile, event.Name, "op", event.Op.String())
			pending[filepath.Clean(event.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.warn.Do(func() {
				logger.Warnw("Watcher error", logger.FieldError, err)
			})

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			sort.Strings(changed)

			start := time.Now()
			if err := w.handler(ctx, changed); err != nil {
				logger.Errorw("Regeneration failed", logger.FieldError, err)
				continue
			}
			logger.Infow("Regenerated",
				logger.FieldCount, len(changed),
				logger.FieldDuration, time.Since(start).Milliseconds())
		}
	}
}

// relevant reports whether event touches a watched schema.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] && filepath.Ext(name) == ".go"
}
