package era

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tartampluch/go-eracal/internal/config"
)

// Watcher reloads a registry whenever its definitions file changes.
type Watcher struct {
	Path     string
	Registry *Registry
	Debounce time.Duration
	Logger   *slog.Logger

	// OnReload, when set, is called after every reload attempt.
	OnReload func(count int, err error)

	watcher *fsnotify.Watcher
}

// NewWatcher watches the directory holding path. Editors often replace files
// instead of writing them, so watching the file itself would lose track of it.
func NewWatcher(path string, r *Registry) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	return &Watcher{
		Path:     abs,
		Registry: r,
		Debounce: config.WatchDebounce,
		Logger:   slog.Default(),
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is cancelled. A failed reload keeps
// the previous definitions.
func (w *Watcher) Run(ctx context.Context) {
	log := w.Logger.With(config.LogKeyComponent, config.CompEra, config.LogKeyFile, w.Path)
	log.Info(config.MsgDefinitionsWatch)
	defer func() { _ = w.watcher.Close() }()

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = config.WatchDebounce
	}

	var pending time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < debounce {
				continue
			}
			pending = time.Time{}
			n, err := w.Registry.LoadFile(w.Path)
			if err != nil {
				log.Warn(config.MsgDefinitionsStale, config.LogKeyError, err)
			} else {
				log.Info(config.MsgDefinitionsLoad, config.LogKeyCount, n)
			}
			if w.OnReload != nil {
				w.OnReload(n, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn(config.ErrWatcher, config.LogKeyError, err)
		}
	}
}
