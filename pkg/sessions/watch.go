package sessions

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces the create+rename pair produced by one Write.
const DefaultWatchDebounce = 150 * time.Millisecond

// Watch calls onChange whenever a record file in the store is created,
// replaced or removed. It blocks until ctx is cancelled.
func (s *FileStore) Watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			base := filepath.Base(event.Name)
			if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, recordExt) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debugf("fsnotify event: %s op=%v", base, event.Op)
			// Debounce rapid writes
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}
