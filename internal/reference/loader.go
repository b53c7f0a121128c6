// Package reference loads the context document used to decide what goes into
// each form field. Plain-text files are served as is; .html and .htm files are
// reduced to their readable text first.
package reference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	infraerrors "github.com/jonesrussell/north-cloud/formfill/infrastructure/errors"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
)

// DefaultPath is used when no path is configured.
const DefaultPath = "./context.txt"

// ErrNotFound is returned when the context document does not exist.
var ErrNotFound = errors.New("context file not found")

// Loader reads the context document once and serves it from memory until the
// file changes on disk.
type Loader struct {
	path   string
	logger infralogger.Logger

	mu     sync.RWMutex
	cached *string

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLoader creates a loader for path. An empty path means DefaultPath.
func NewLoader(path string, logger infralogger.Logger) *Loader {
	if path == "" {
		path = DefaultPath
	}
	return &Loader{path: filepath.Clean(path), logger: logger}
}

// Path returns the watched file path.
func (l *Loader) Path() string { return l.path }

// Load returns the document text. A missing file yields an error wrapping
// ErrNotFound; misses are not cached.
func (l *Loader) Load(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	l.mu.RLock()
	cached := l.cached
	l.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", infraerrors.WrapWithContextf(ErrNotFound, "load reference %s", l.path)
		}
		return "", infraerrors.WrapWithContextf(err, "load reference %s", l.path)
	}

	text := string(data)
	if isHTML(l.path) {
		if text, err = readableText(text); err != nil {
			return "", infraerrors.WrapWithContextf(err, "read reference page %s", l.path)
		}
	}

	l.mu.Lock()
	l.cached = &text
	l.mu.Unlock()

	l.logger.Debug("Reference document loaded",
		infralogger.String("path", l.path),
		infralogger.Int("bytes", len(data)),
	)
	return text, nil
}

// Invalidate drops the cached text so the next Load re-reads the file.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}

// Watch invalidates the cache whenever the file is written, replaced or
// removed. The parent directory is watched so editors that save by rename are
// seen too. Watching stops when ctx is cancelled or Stop is called.
func (l *Loader) Watch(ctx context.Context) error {
	l.watchMu.Lock()
	defer l.watchMu.Unlock()

	if l.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(l.path)
	if addErr := watcher.Add(dir); addErr != nil {
		_ = watcher.Close()
		return infraerrors.WrapWithContextf(addErr, "watch %s", dir)
	}

	l.watcher = watcher
	l.done = make(chan struct{})
	go l.run(ctx, watcher, l.done)

	l.logger.Info("Watching reference document", infralogger.String("path", l.path))
	return nil
}

// Stop ends watching and waits for the watch loop to exit.
func (l *Loader) Stop() {
	l.watchMu.Lock()
	defer l.watchMu.Unlock()

	if l.watcher == nil {
		return
	}
	if err := l.watcher.Close(); err != nil {
		l.logger.Warn("Closing reference watcher failed", infralogger.Error(err))
	}
	<-l.done
	l.watcher = nil
	l.done = nil
}

func (l *Loader) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			l.Invalidate()
			l.logger.Info("Reference document changed",
				infralogger.String("path", l.path),
				infralogger.String("op", event.Op.String()),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("Reference watcher error", infralogger.Error(err))
		}
	}
}
