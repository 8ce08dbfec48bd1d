package docindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Provider holds the current index snapshot and swaps in whole replacements.
// Readers always see a complete snapshot; a failed rebuild keeps the previous
// one serving.
type Provider struct {
	dir     string
	current atomic.Pointer[Index]
	logger  *slog.Logger
}

// NewProvider builds the initial index from dir. A failed initial build is
// fatal; there is nothing to serve.
func NewProvider(dir string, logger *slog.Logger) (*Provider, error) {
	ix, err := Build(dir)
	if err != nil {
		return nil, err
	}

	p := &Provider{dir: dir, logger: logger}
	p.current.Store(ix)
	logger.Info("docindex: built", "documents", ix.Len(), "corpora", len(ix.Corpora()))
	return p, nil
}

// Index returns the current snapshot.
func (p *Provider) Index() *Index {
	return p.current.Load()
}

// Reload rebuilds the whole index and swaps it in atomically. On failure the
// previous snapshot stays live and the error is returned.
func (p *Provider) Reload() error {
	ix, err := Build(p.dir)
	if err != nil {
		return fmt.Errorf("docindex: reload: %w", err)
	}
	p.current.Store(ix)
	p.logger.Info("docindex: reloaded", "documents", ix.Len(), "corpora", len(ix.Corpora()))
	return nil
}

// watchDebounce is how long after the last filesystem event a reload fires.
const watchDebounce = 500 * time.Millisecond

// Watch rebuilds the index whenever files under the corpus root change.
// Blocks until ctx is cancelled.
func (p *Provider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("docindex: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.dir); err != nil {
		return fmt.Errorf("docindex: watch %q: %w", p.dir, err)
	}
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return fmt.Errorf("docindex: read corpus root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := watcher.Add(filepath.Join(p.dir, e.Name())); err != nil {
			return fmt.Errorf("docindex: watch corpus %q: %w", e.Name(), err)
		}
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if err := p.Reload(); err != nil {
					p.logger.Warn("docindex: hot reload failed, keeping previous snapshot", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("docindex: watcher error", "error", err)
		}
	}
}
