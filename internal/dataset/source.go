package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source holds the current in-memory dataset for a file and can reload it.
// Readers always see a complete dataset; reloads swap the pointer.
type Source struct {
	path   string
	codec  Codec
	logger *zap.Logger
	cur    atomic.Pointer[Dataset]
}

// NewSource loads path. A missing or unreadable file is fatal.
func NewSource(path string, c Codec, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{path: path, codec: c, logger: logger.With(zap.String("dataset", path))}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// StaticSource wraps an already loaded dataset; Reload re-reads ds.Path.
func StaticSource(ds *Dataset, c Codec) *Source {
	s := &Source{path: ds.Path, codec: c, logger: zap.NewNop()}
	s.cur.Store(ds)
	return s
}

// Current returns the latest successfully loaded dataset.
func (s *Source) Current() *Dataset { return s.cur.Load() }

// Path returns the watched file path.
func (s *Source) Path() string { return s.path }

// Reload re-reads the file. On failure the previous dataset stays current.
func (s *Source) Reload() error {
	start := time.Now()
	ds, err := Load(s.path, s.codec)
	if err != nil {
		return err
	}
	s.cur.Store(ds)
	s.logger.Info("dataset loaded",
		zap.Int("records", len(ds.Records)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Watch reloads the dataset whenever the file is written or replaced, until
// ctx is done. The parent directory is watched because atomic writers rename
// a new file over the old one.
func (s *Source) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	target := filepath.Clean(s.path)
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.logger.Error("reload failed; keeping previous dataset", zap.Error(err))
			}
		}
	}
}
