package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyperengineering/nurture/internal/observability"
)

// LoaderFunc produces a fresh Set, typically by calling Load on the override dir.
type LoaderFunc func() (*Set, error)

// Watcher reloads catalogs when YAML files in a directory change.
// A failed reload leaves the previously published Set in place.
type Watcher struct {
	dir      string
	registry *Registry
	load     LoaderFunc
	debounce time.Duration
}

// NewWatcher creates a watcher over dir. Bursts of events within debounce
// collapse into a single reload.
func NewWatcher(dir string, registry *Registry, load LoaderFunc, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{dir: dir, registry: registry, load: load, debounce: debounce}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("catalog watcher unavailable",
			"component", "catalog",
			"action", "watch_failed",
			"error", err,
		)
		return
	}
	defer fw.Close()

	if err := w.addTree(fw); err != nil {
		slog.Error("catalog watcher unavailable",
			"component", "catalog",
			"action", "watch_failed",
			"dir", w.dir,
			"error", err,
		)
		return
	}
	slog.Info("catalog watcher started", "component", "catalog", "dir", w.dir)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fw.Add(ev.Name)
				}
			}
			if !isCatalogFile(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Warn("catalog watcher error", "component", "catalog", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	start := time.Now()
	set, err := w.load()
	if err != nil {
		observability.RecordCatalogReload(false)
		slog.Error("catalog reload failed",
			"component", "catalog",
			"action", "reload_failed",
			"error", err,
		)
		return
	}
	w.registry.Replace(set)
	observability.RecordCatalogReload(true)
	slog.Info("catalogs reloaded",
		"component", "catalog",
		"action", "reload_complete",
		"catalogs", len(set.Names()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (w *Watcher) addTree(fw *fsnotify.Watcher) error {
	return filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}

func isCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
