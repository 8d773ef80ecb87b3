package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

var watchLog = logger.New("cli:validate_watch")

// watchDebounce coalesces the burst of events an editor save produces.
var watchDebounce = 300 * time.Millisecond

// catalogInputs are the node inputs whose checks depend on the model catalog.
var catalogInputs = map[string]bool{"model": true, "loras": true}

// refreshCatalogOnMiss drops a cached catalog when a result names a model or
// LoRA the catalog lacks, so the next run sees files installed meanwhile.
func refreshCatalogOnMiss(src catalog.Source, results []FileResult) bool {
	cached, ok := src.(interface{ Invalidate() })
	if !ok {
		return false
	}
	for _, r := range results {
		if !r.Valid && catalogInputs[r.Input] {
			watchLog.Printf("Catalog miss in %s (%s), refreshing catalog", r.File, r.Input)
			cached.Invalidate()
			return true
		}
	}
	return false
}

// watchSnapshots validates paths once, then again whenever one of them is
// written or recreated, until ctx is done.
func watchSnapshots(ctx context.Context, config ValidateConfig, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched instead of files so editors that replace the
	// file on save keep being tracked.
	watched := make(map[string]string, len(paths))
	dirs := map[string]bool{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		watched[abs] = path
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	runOnce := func(files []string) {
		results, err := validateWithCatalog(ctx, config, files)
		if err != nil {
			fmt.Fprintln(config.ErrOut, console.FormatErrorMessage(err.Error()))
			return
		}
		refreshCatalogOnMiss(config.Catalog, results)
		if err := renderResults(config, results); err != nil {
			fmt.Fprintln(config.ErrOut, console.FormatErrorMessage(err.Error()))
		}
	}

	runOnce(paths)
	fmt.Fprintln(config.ErrOut, console.FormatInfoMessage(fmt.Sprintf("Watching %d snapshot files for changes (Ctrl+C to stop)", len(paths))))

	changed := map[string]bool{}
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
			watchLog.Print("Watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			path, tracked := watched[abs]
			if !tracked || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			watchLog.Printf("Change detected: %s (%s)", path, event.Op)
			changed[path] = true
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			files := make([]string, 0, len(changed))
			for path := range changed {
				files = append(files, path)
			}
			clear(changed)
			sort.Strings(files)
			runOnce(files)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			watchLog.Printf("Watcher error: %v", err)
			fmt.Fprintln(config.ErrOut, console.FormatWarningMessage(fmt.Sprintf("File watcher error: %v", err)))
		}
	}
}
