package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/vitae/internal/core/ports/driven"
	"github.com/custodia-labs/vitae/internal/logger"
)

// reloadDelay coalesces editor save bursts (write, chmod, rename) into one reload.
const reloadDelay = 100 * time.Millisecond

// PromptWatcher reloads a PromptStore whenever a template file in its
// directory is created, written, renamed or removed.
type PromptWatcher struct {
	store   driven.PromptStore
	dir     string
	watcher *fsnotify.Watcher
	// OnReload, when set, is called after every reload.
	OnReload func()
}

// NewPromptWatcher starts watching dir. The directory must exist.
func NewPromptWatcher(store driven.PromptStore, dir string) (*PromptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &PromptWatcher{store: store, dir: dir, watcher: w}, nil
}

// Run processes events until ctx is cancelled. It always returns nil on
// cancellation so it can run inside an errgroup.
func (p *PromptWatcher) Run(ctx context.Context) error {
	defer p.watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-p.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("prompt file changed: %s (%s)", filepath.Base(event.Name), event.Op)
			pending = time.After(reloadDelay)
		case <-pending:
			pending = nil
			p.store.Reload()
			logger.Info("reloaded prompts from %s", p.dir)
			if p.OnReload != nil {
				p.OnReload()
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != promptExt {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
