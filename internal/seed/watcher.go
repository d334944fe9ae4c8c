package seed

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher hot-reloads seed files when they change on disk. Intended for
// development deployments; Apply's insert-if-missing policy still governs
// startup.
type Watcher struct {
	watcher *fsnotify.Watcher
	seeder  *Seeder
	log     *zap.Logger
	done    chan struct{}
}

// NewWatcher starts watching the seed directory.
func NewWatcher(dir string, seeder *Seeder, log *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return &Watcher{
		watcher: fsWatcher,
		seeder:  seeder,
		log:     log,
		done:    make(chan struct{}),
	}, nil
}

// Start consumes filesystem events until Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				ext := strings.ToLower(filepath.Ext(event.Name))
				if ext != ".yaml" && ext != ".yml" {
					continue
				}
				if err := w.seeder.ReloadFile(ctx, event.Name); err != nil {
					w.log.Warn("seed reload failed",
						zap.String("file", event.Name),
						zap.Error(err))
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn("seed watcher error", zap.Error(err))

			case <-w.done:
				return
			}
		}
	}()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

func isTokensFile(path string) bool {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) == tokensFile
}
