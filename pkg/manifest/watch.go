package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets a writer finish before the file is read. Generators and editors often
// write in several steps or replace the file by rename.
const reloadDelay = 250 * time.Millisecond

// Watch reloads the manifest at path whenever it is written, created or renamed into place,
// and passes every manifest that loads cleanly to onLoad. A file that fails to load is logged
// and the previous manifest stays in use. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file itself, so the file may be missing
// when Watch starts.
func Watch(ctx context.Context, path string, logger *slog.Logger, onLoad func(Manifest)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create manifest watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("Watching manifest for changes", "path", path)

	target := filepath.Clean(path)
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Manifest changed", "path", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(reloadDelay)
			pending = timer.C

		case <-pending:
			pending = nil
			m, err := Load(path)
			if err != nil {
				logger.Warn("Manifest reload failed, keeping the previous one", "path", path, "error", err)
				continue
			}
			onLoad(m)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Manifest watcher error", "error", err)
		}
	}
}
