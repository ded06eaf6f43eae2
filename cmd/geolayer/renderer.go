package main

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/geolayer"
	"github.com/gogpu/geolayer/backend"
	"github.com/gogpu/geolayer/imageload"
)

// sceneRenderer keeps one BitmapLayer per scene layer id so that
// re-applying an edited scene only updates what changed.
type sceneRenderer struct {
	be     backend.RenderBackend
	loader geolayer.ImageLoader
	layers map[string]*geolayer.BitmapLayer
	order  []string
	view   geolayer.Viewport
	width  int
	height int
}

func newSceneRenderer(be backend.RenderBackend, loader geolayer.ImageLoader) *sceneRenderer {
	return &sceneRenderer{
		be:     be,
		loader: loader,
		layers: make(map[string]*geolayer.BitmapLayer),
	}
}

// newLoader builds the image loader for a scene file.
func newLoader(scenePath string, progress bool) *imageload.Loader {
	opts := []imageload.Option{
		imageload.WithBaseDir(filepath.Dir(scenePath)),
		imageload.WithMaxSide(maxSide),
	}
	if progress {
		opts = append(opts, imageload.WithProgress(func(url string, size int64) io.Writer {
			return progressbar.DefaultBytes(size, "fetch "+path.Base(url))
		}))
	}
	return imageload.New(opts...)
}

// Apply syncs the layers with s. New ids are created and initialized,
// existing ones receive the new props and ids no longer present are
// finalized.
func (r *sceneRenderer) Apply(s *Scene) error {
	keep := make(map[string]bool, len(s.Layers))
	order := make([]string, 0, len(s.Layers))
	for _, spec := range s.Layers {
		props, err := spec.Props()
		if err != nil {
			return fmt.Errorf("layer %s: %w", spec.ID, err)
		}
		if l, ok := r.layers[spec.ID]; ok {
			if err := l.SetProps(props); err != nil {
				return err
			}
		} else {
			l := geolayer.NewBitmapLayer(props)
			err := l.Initialize(geolayer.LayerContext{
				Device: r.be.Device(),
				Loader: r.loader,
				OnError: func(id string, err error) {
					logger.Warn("layer error", "layer", id, "err", err)
				},
			})
			if err != nil {
				return err
			}
			r.layers[spec.ID] = l
		}
		keep[spec.ID] = true
		order = append(order, spec.ID)
	}
	for id, l := range r.layers {
		if !keep[id] {
			l.Finalize()
			delete(r.layers, id)
			logger.Debug("layer removed", "layer", id)
		}
	}
	r.order = order
	r.view = s.View()
	r.width, r.height = s.Width, s.Height
	return nil
}

// Preload waits for every pending image load. Loads run concurrently; the
// first failure cancels the remaining waits.
func (r *sceneRenderer) Preload(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range r.order {
		l := r.layers[id]
		if !l.Loading() {
			continue
		}
		g.Go(func() error {
			if err := l.WaitForImage(gctx); err != nil {
				return fmt.Errorf("layer %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Render draws all layers in scene order. With picking set only pickable
// layers are drawn, in the picking color.
func (r *sceneRenderer) Render(picking bool) (*geolayer.Bitmap, error) {
	u := r.view.Uniforms()
	if picking {
		u[geolayer.UniformPickingActive] = true
	}
	return r.be.RenderFrame(r.width, r.height, func() error {
		for _, id := range r.order {
			if err := r.layers[id].Draw(geolayer.DrawParams{Uniforms: u}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close finalizes every layer.
func (r *sceneRenderer) Close() {
	for id, l := range r.layers {
		l.Finalize()
		delete(r.layers, id)
	}
	r.order = nil
}
