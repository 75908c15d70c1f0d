package credentials

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dollpublish/dollpublish/pkg/logger"
)

// Watch reloads s whenever its registry file is written, created or renamed into place.
// The directory is watched rather than the file because editors and atomic writers
// replace the file instead of writing it in place. Watch returns once the watcher is
// running; it stops when ctx is done. Reload-on-miss in Verify still applies.
func Watch(ctx context.Context, s *Store) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("registry watcher: %w", err)
	}
	dir := filepath.Dir(s.Path())
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.Path()) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Reload(); err != nil {
					// a half-written file is expected mid-edit; the next event or a miss retries
					logger.Debugf("registry reload after %s: %v", ev.Op, err)
					continue
				}
				logger.Infof("credential registry reloaded (%s)", ev.Op)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warnf("registry watcher error: %v", err)
			}
		}
	}()
	return nil
}
