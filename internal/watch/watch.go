// Package watch reports changes to a configuration document.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long a document must be quiet before a change is
// reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a single document. The document's directory is watched
// rather than the file so editors that replace files on save are followed.
type Watcher struct {
	path     string
	debounce time.Duration
	log      zerolog.Logger
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the document at path.
func New(path string, debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		log:      log,
		watcher:  w,
	}, nil
}

// Run calls onChange after each burst of changes to the document until ctx
// is done. It returns nil on cancellation. onChange runs on the caller's
// goroutine, so bursts arriving while it runs are reported once afterwards.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("document changed")
			timer.Reset(w.debounce)
		case <-timer.C:
			onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
