package geolayer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type layerState uint8

const (
	stateCreated layerState = iota
	stateInitialized
	stateFinalized
)

// imageResult is a finished URL fetch waiting to be turned into a texture
// on the render thread.
type imageResult struct {
	gen    uint64
	url    string
	bitmap *Bitmap
	err    error
}

// BitmapLayer draws one bitmap onto an arbitrary quadrilateral.
//
// Initialize, Update, SetProps, Draw, WaitForImage and Finalize must be
// called from a single goroutine (the render thread). URL images are
// fetched on background goroutines; completed fetches are turned into
// textures at the next Update, Draw or WaitForImage call.
type BitmapLayer struct {
	id    string
	opts  layerOptions
	props Props
	state layerState

	ctx     LayerContext
	model   Model
	corners Corners

	texture     Texture
	ownsTexture bool
	lastErr     error

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	pending  *imageResult
	inflight chan struct{}
	fetches  sync.WaitGroup
}

var _ Renderable = (*BitmapLayer)(nil)

// NewBitmapLayer creates a layer. Empty props fields take their defaults
// and an empty ID is replaced by a random one. Nothing is allocated on the
// device until Initialize.
func NewBitmapLayer(props Props, opts ...LayerOption) *BitmapLayer {
	o := defaultLayerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if props.ID == "" {
		props.ID = "bitmap-layer-" + uuid.NewString()
	}
	return &BitmapLayer{
		id:    props.ID,
		opts:  o,
		props: props.WithDefaults(),
	}
}

// ID returns the layer id.
func (l *BitmapLayer) ID() string { return l.id }

// Props returns the current props with defaults applied.
func (l *BitmapLayer) Props() Props { return l.props }

// Shaders returns the bitmap layer program.
func (l *BitmapLayer) Shaders() ShaderSource { return BitmapShaders() }

// Geometry returns the static quad geometry.
func (l *BitmapLayer) Geometry() Geometry { return QuadGeometry() }

// Corners returns the resolved corners of the current bounds.
func (l *BitmapLayer) Corners() Corners { return l.corners }

// Texture returns the texture being drawn, or nil.
func (l *BitmapLayer) Texture() Texture { return l.texture }

// Model returns the device model, or nil before Initialize.
func (l *BitmapLayer) Model() Model { return l.model }

// LastError returns the most recent non-fatal error, such as a failed
// texture load.
func (l *BitmapLayer) LastError() error { return l.lastErr }

// Loading reports whether a URL fetch is in flight or waiting to be
// applied.
func (l *BitmapLayer) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight != nil
}

// Initialize creates the model, publishes every uniform and starts
// acquiring the image.
func (l *BitmapLayer) Initialize(ctx LayerContext) error {
	switch l.state {
	case stateFinalized:
		return ErrFinalized
	case stateInitialized:
		return nil
	}
	if ctx.Device == nil {
		return ErrNoDevice
	}
	corners, err := l.props.BitmapBounds.Resolve()
	if err != nil {
		return fmt.Errorf("layer %s: %w", l.id, err)
	}

	model, err := ctx.Device.NewModel(ModelDescriptor{
		ID:        l.id,
		Shaders:   l.Shaders(),
		Geometry:  l.Geometry(),
		Instanced: true,
	})
	if err != nil {
		return fmt.Errorf("layer %s: create model: %w", l.id, err)
	}

	l.ctx = ctx
	l.model = model
	l.state = stateInitialized
	l.corners = corners
	l.model.SetUniforms(boundsUniforms(corners).Merge(appearanceUniforms(l.props), opacityUniforms(l.props)))
	Logger().Debug("geolayer: layer initialized", "layer", l.id, "bounds", l.props.BitmapBounds)

	l.loadImage(l.props.Image)
	return nil
}

// SetProps replaces the current props, diffing against them.
func (l *BitmapLayer) SetProps(next Props) error {
	return l.Update(l.props, next)
}

// Update applies a prop change. Only the uniform groups whose props
// differ between old and next are republished; an image change starts
// acquiring the new image while the previous texture keeps drawing until
// a URL fetch completes. Malformed bounds reject the whole update.
func (l *BitmapLayer) Update(old, next Props) error {
	if err := l.checkState(); err != nil {
		return err
	}
	if next.ID == "" {
		next.ID = l.id
	}
	next = next.WithDefaults()
	changed := Diff(old, next)

	var corners Corners
	if changed.Has(ChangeBounds) {
		c, err := next.BitmapBounds.Resolve()
		if err != nil {
			return fmt.Errorf("layer %s: %w", l.id, err)
		}
		corners = c
	}

	l.props = next
	if changed != ChangeNone {
		Logger().Debug("geolayer: props changed", "layer", l.id, "changed", changed)
	}
	if changed.Has(ChangeBounds) {
		l.corners = corners
		l.model.SetUniforms(boundsUniforms(corners))
	}
	if changed.Has(ChangeAppearance) {
		l.model.SetUniforms(appearanceUniforms(next))
	}
	if changed.Has(ChangeOpacity) {
		l.model.SetUniforms(opacityUniforms(next))
	}
	if changed.Has(ChangeImage) {
		l.loadImage(next.Image)
	}
	l.applyPending()
	return nil
}

// Draw renders the bitmap with the global uniforms merged in. Without a
// texture, or while hidden, it draws nothing and returns nil. During the
// picking pass non-pickable layers are skipped.
func (l *BitmapLayer) Draw(params DrawParams) error {
	if err := l.checkState(); err != nil {
		return err
	}
	l.applyPending()

	if l.texture == nil || l.props.Hidden {
		return nil
	}
	if params.Uniforms.Bool(UniformPickingActive) && !l.props.Pickable {
		return nil
	}
	u := params.Uniforms.Merge(Uniforms{UniformBitmapTexture: l.texture})
	if err := l.model.Render(u); err != nil {
		return fmt.Errorf("layer %s: render: %w", l.id, err)
	}
	return nil
}

// WaitForImage blocks until the current URL fetch has finished and its
// texture is in place. It returns the load error, if the fetch failed,
// or ctx.Err() when ctx ends first. Without a fetch in flight it returns
// nil immediately.
func (l *BitmapLayer) WaitForImage(ctx context.Context) error {
	if err := l.checkState(); err != nil {
		return err
	}
	for {
		l.mu.Lock()
		done := l.inflight
		ready := l.pending != nil
		l.mu.Unlock()

		if ready {
			return l.applyPending()
		}
		if done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Finalize cancels in-flight fetches, waits for them to exit and releases
// the model and any texture the layer created. Adopted textures are left
// alone. Calling Finalize more than once is a no-op.
func (l *BitmapLayer) Finalize() {
	if l.state == stateFinalized {
		return
	}
	l.mu.Lock()
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.pending = nil
	l.inflight = nil
	l.mu.Unlock()
	l.fetches.Wait()

	l.setTexture(nil, false)
	if l.model != nil {
		l.model.Destroy()
		l.model = nil
	}
	l.state = stateFinalized
	Logger().Debug("geolayer: layer finalized", "layer", l.id)
}

func (l *BitmapLayer) checkState() error {
	switch l.state {
	case stateCreated:
		return ErrNotInitialized
	case stateFinalized:
		return ErrFinalized
	}
	return nil
}

// loadImage starts acquiring src. Any fetch still in flight is cancelled
// and its result will be discarded.
func (l *BitmapLayer) loadImage(src ImageSource) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.pending = nil
	l.inflight = nil
	l.mu.Unlock()

	Logger().Debug("geolayer: loading image", "layer", l.id, "image", describeImage(src))

	switch img := src.(type) {
	case nil:
		l.setTexture(nil, false)
	case TextureHandle:
		l.setTexture(img.Texture, false)
	case BitmapImage:
		if img.Bitmap == nil {
			l.setTexture(nil, false)
			return
		}
		tex, err := l.ctx.Device.NewTexture(img.Bitmap)
		if err != nil {
			l.reportError(fmt.Errorf("%w: upload bitmap: %w", ErrTextureLoadFailed, err))
			return
		}
		l.setTexture(tex, true)
	case URL:
		l.fetch(gen, string(img))
	default:
		l.reportError(fmt.Errorf("%w: %T", ErrUnsupportedImageReference, src))
	}
}

func (l *BitmapLayer) fetch(gen uint64, url string) {
	loader := l.opts.loader
	if loader == nil {
		loader = l.ctx.Loader
	}
	if loader == nil {
		l.reportError(fmt.Errorf("%w: %s: %w", ErrTextureLoadFailed, url, ErrNoImageLoader))
		return
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if l.opts.loadTimeout > 0 {
		ctx, cancel = context.WithTimeout(l.opts.baseCtx, l.opts.loadTimeout)
	} else {
		ctx, cancel = context.WithCancel(l.opts.baseCtx)
	}
	done := make(chan struct{})

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		cancel()
		return
	}
	l.cancel = cancel
	l.inflight = done
	l.mu.Unlock()

	l.fetches.Add(1)
	go func() {
		defer l.fetches.Done()
		defer close(done)
		defer cancel()

		bm, err := loader.LoadImage(ctx, url)

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen {
			return
		}
		l.pending = &imageResult{gen: gen, url: url, bitmap: bm, err: err}
	}()
}

// applyPending turns a finished fetch into the current texture. It
// returns the load error of that fetch, if any.
func (l *BitmapLayer) applyPending() error {
	l.mu.Lock()
	r := l.pending
	if r != nil && r.gen == l.gen {
		l.pending = nil
		l.inflight = nil
		l.cancel = nil
	} else {
		r = nil
	}
	l.mu.Unlock()
	if r == nil {
		return nil
	}

	if r.err != nil {
		err := fmt.Errorf("%w: %s: %w", ErrTextureLoadFailed, r.url, r.err)
		l.reportError(err)
		return err
	}
	if r.bitmap == nil {
		err := fmt.Errorf("%w: %s: loader returned no image", ErrTextureLoadFailed, r.url)
		l.reportError(err)
		return err
	}
	tex, err := l.ctx.Device.NewTexture(r.bitmap)
	if err != nil {
		err = fmt.Errorf("%w: %s: upload: %w", ErrTextureLoadFailed, r.url, err)
		l.reportError(err)
		return err
	}
	l.setTexture(tex, true)
	Logger().Debug("geolayer: texture loaded", "layer", l.id, "url", r.url,
		"width", tex.Width(), "height", tex.Height())
	return nil
}

func (l *BitmapLayer) setTexture(t Texture, owned bool) {
	if l.texture != nil && l.ownsTexture && l.texture != t {
		l.texture.Destroy()
	}
	l.texture = t
	l.ownsTexture = owned && t != nil
}

func (l *BitmapLayer) reportError(err error) {
	l.lastErr = err
	Logger().Warn("geolayer: layer error", "layer", l.id, "err", err)
	if l.ctx.OnError != nil {
		l.ctx.OnError(l.id, err)
	}
}
