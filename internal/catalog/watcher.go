package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "flaromlab/internal/log"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a Catalog when JSON files in its data directory change.
type Watcher struct {
	catalog  *Catalog
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// OnReload, when set, receives every snapshot produced by the watcher.
	OnReload func(*Snapshot)

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewWatcher prepares a watcher for dir. Nothing is watched until Start.
func NewWatcher(c *Catalog, dir string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		catalog:  c,
		dir:      dir,
		debounce: debounce,
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.startOnce.Do(func() {
		if err = w.watcher.Add(w.dir); err != nil {
			close(w.doneCh)
			return
		}
		applog.Info(ctx, "watching catalog directory", "dir", w.dir)
		go w.run(ctx)
	})
	return err
}

// Stop ends the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		// a watcher that never started has no loop to wait for
		w.startOnce.Do(func() { close(w.doneCh) })
		close(w.stopCh)
		err = w.watcher.Close()
		<-w.doneCh
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			applog.Debug(ctx, "catalog file changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			applog.Error(ctx, "catalog watcher error", "error", err)
		case <-fire:
			fire = nil
			snapshot := w.catalog.Reload(ctx)
			if w.OnReload != nil {
				w.OnReload(snapshot)
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
