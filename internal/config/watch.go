package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Store hands out the most recently loaded config. Readers take a snapshot when a
// session starts; a reload never changes a session already running.
type Store struct {
	current atomic.Pointer[Config]
}

func NewStore(cfg *Config) *Store {
	s := &Store{}
	if cfg == nil {
		cfg = Default()
	}
	s.current.Store(cfg)
	return s
}

func (s *Store) Get() *Config {
	return s.current.Load()
}

func (s *Store) Set(cfg *Config) {
	if cfg == nil {
		return
	}
	s.current.Store(cfg)
}

// Watch reloads path into store whenever it changes on disk. The parent directory is
// watched so editors that replace the file by rename are still picked up. Parse errors
// keep the previous config. Blocks until ctx is done.
func Watch(ctx context.Context, path string, store *Store) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	// Editors emit bursts of events per save; reload once the burst settles.
	timer := time.NewTimer(time.Hour)
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
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				slog.Warn("Config reload failed, keeping previous", "path", abs, "error", err)
				continue
			}
			store.Set(cfg)
			slog.Info("Config reloaded", "path", abs)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Config watcher error", "error", err)
		}
	}
}
