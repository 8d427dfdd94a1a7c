package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/asynkron/tpo/internal/catalog"
	"github.com/asynkron/tpo/internal/dupes"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// watchDuplicates scans once, then re-scans whenever one of the catalog files
// changes, until ctx is done. Strict mode never ends the loop.
func (a *app) watchDuplicates(ctx context.Context, w io.Writer, files []catalog.CatalogFile, opts dupes.Options, o *duplicatesOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched since editors often replace files on save.
	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	scan := func() {
		if _, err := a.scanDuplicates(ctx, w, files, opts, o); err != nil {
			a.log.Error("scan failed", "error", err)
		}
	}
	scan()
	a.log.Info("👀 Watching catalogs for changes", "files", len(files))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			a.log.Debug("catalog changed", "file", event.Name, "op", event.Op.String())
			pending = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Error("watch error", "error", err)
		case <-pending:
			pending = nil
			scan()
		}
	}
}
