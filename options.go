package geolayer

import (
	"context"
	"time"
)

// LayerOption configures a BitmapLayer during creation.
//
// Example:
//
//	layer := geolayer.NewBitmapLayer(props,
//	    geolayer.WithLoadTimeout(10*time.Second),
//	)
type LayerOption func(*layerOptions)

type layerOptions struct {
	baseCtx     context.Context
	loadTimeout time.Duration
	loader      ImageLoader
}

func defaultLayerOptions() layerOptions {
	return layerOptions{
		baseCtx: context.Background(),
	}
}

// WithLoadTimeout bounds every URL fetch. Zero means no timeout.
func WithLoadTimeout(d time.Duration) LayerOption {
	return func(o *layerOptions) {
		o.loadTimeout = d
	}
}

// WithBaseContext sets the parent context of URL fetches. Cancelling it
// aborts in-flight fetches; the layer keeps drawing its current texture.
func WithBaseContext(ctx context.Context) LayerOption {
	return func(o *layerOptions) {
		if ctx != nil {
			o.baseCtx = ctx
		}
	}
}

// WithImageLoader overrides the loader of the LayerContext.
func WithImageLoader(l ImageLoader) LayerOption {
	return func(o *layerOptions) {
		o.loader = l
	}
}
