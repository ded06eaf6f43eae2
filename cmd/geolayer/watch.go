package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <scene.yaml>",
	Short: "Re-render a scene whenever it changes",
	Long: `Watch renders the scene once and then again after every save. Layers are
kept between renders, so only changed props are republished and unchanged
images are not fetched again. An invalid edit is reported and the last
good frame is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	scenePath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	scene, err := LoadScene(scenePath)
	if err != nil {
		return err
	}

	be, err := openBackend(backendName)
	if err != nil {
		return err
	}
	defer be.Close()

	r := newSceneRenderer(be, newLoader(scenePath, !quiet))
	defer r.Close()

	ctx := cmd.Context()
	out := outputFor(args[0])
	if err := renderScene(ctx, r, scene, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, watching %s\n", out, args[0])

	w, err := newSceneWatcher(scenePath, func(ctx context.Context) {
		next, err := LoadScene(scenePath)
		if err != nil {
			logger.Warn("scene not reloaded", "err", err)
			return
		}
		if err := renderScene(ctx, r, next, out); err != nil {
			logger.Warn("render failed", "err", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	<-ctx.Done()
	return nil
}

// sceneWatcher calls onChange once a scene file has been quiet for the
// debounce interval after a write. The parent directory is watched so
// that editors replacing the file by rename are seen too.
type sceneWatcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	path      string
	debounce  time.Duration
	lastEvent time.Time
	pending   bool
	onChange  func(context.Context)
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	reloads   int
}

func newSceneWatcher(path string, onChange func(context.Context)) (*sceneWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &sceneWatcher{
		watcher:  watcher,
		path:     filepath.Clean(path),
		debounce: 500 * time.Millisecond,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately.
func (w *sceneWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	logger.Debug("watching scene", "path", w.path)
	go w.run(ctx)
	return nil
}

// Stop ends the run loop and closes the underlying watcher.
func (w *sceneWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		logger.Warn("closing watcher", "err", err)
	}
}

// Reloads returns how many times onChange has run.
func (w *sceneWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *sceneWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 5)
	defer ticker.Stop()

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
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "err", err)
		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *sceneWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	logger.Debug("scene event", "op", event.Op.String(), "path", event.Name)

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

func (w *sceneWatcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	w.onChange(ctx)

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
}
