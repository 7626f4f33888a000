package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/podlex/internal/extract"
	"github.com/starford/podlex/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of EventCreated, EventUpdated, EventDeleted.
type EventCallback func(kind string, name string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the article store and keeps the index
// in step until ctx is cancelled. It calls cb (if non-nil) after each
// successful index mutation.
//
// Rename events trigger a debounced reconciliation pass that removes stale
// entries and indexes records that were moved into place.
func Watch(ctx context.Context, db *DB, store storage.Provider, ex *extract.Extractor, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	notify := func(kind, name string) {
		if cb != nil {
			cb(kind, name)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, ex, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := store.ReadRaw(name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("name", name), slog.String("error", readErr.Error()))
					continue
				}
				if idxErr := indexRecord(db, ex, name, data); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("name", name), slog.String("error", idxErr.Error()))
					continue
				}
				kind := EventUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("name", name), slog.String("op", kind))
				notify(kind, name)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteArticle(name); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("name", name), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("name", name))
				notify(EventDeleted, name)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old name only; the new name
				// arrives as a Create if it stays in the directory.
				if delErr := db.DeleteArticle(name); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("name", name), slog.String("error", delErr.Error()))
				} else {
					notify(EventDeleted, name)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries without a record on disk and indexes
// records whose checksum changed.
func reconcile(db *DB, store storage.Provider, ex *extract.Extractor, logger *slog.Logger, notify func(kind, name string)) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Name] = m.Checksum
	}

	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if delErr := db.DeleteArticle(name); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("name", name))
				notify(EventDeleted, name)
			}
		}
	}

	for name, cs := range disk {
		if checksums[name] == cs {
			continue
		}
		data, readErr := store.ReadRaw(name)
		if readErr != nil {
			continue
		}
		if idxErr := indexRecord(db, ex, name, data); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("name", name))
			notify(EventCreated, name)
		}
	}
}
