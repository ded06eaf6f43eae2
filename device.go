package geolayer

import "context"

// Device is the rendering library a layer draws through. Implementations
// live in the backend packages.
type Device interface {
	// NewModel compiles the shader program and uploads the geometry.
	NewModel(desc ModelDescriptor) (Model, error)

	// NewTexture uploads a bitmap into a new texture owned by the caller.
	NewTexture(b *Bitmap) (Texture, error)
}

// Model is a compiled program plus geometry. Uniforms set through
// SetUniforms persist across Render calls.
type Model interface {
	SetUniforms(u Uniforms)
	Uniforms() Uniforms

	// Render issues one draw call. The uniforms passed here are merged
	// over the persistent ones for this call only.
	Render(u Uniforms) error

	Destroy()
}

// Texture is an opaque GPU image.
type Texture interface {
	Width() int
	Height() int
	Destroy()
}

// ModelDescriptor describes a model to build.
type ModelDescriptor struct {
	ID        string
	Shaders   ShaderSource
	Geometry  Geometry
	Instanced bool
}

// ShaderSource names a program and its stages. Modules are shared shader
// libraries the stages call into, in dependency order.
type ShaderSource struct {
	Name    string
	VS      string
	FS      string
	Modules []string
}

// Topology is a primitive assembly mode.
type Topology uint8

const (
	TriangleList Topology = iota
	TriangleStrip
)

// Geometry is a non-indexed vertex stream. Attributes hold tightly packed
// float32 components per vertex.
type Geometry struct {
	Topology    Topology
	VertexCount int
	Attributes  map[string][]float32
}

// ImageLoader fetches and decodes images referenced by URL.
type ImageLoader interface {
	LoadImage(ctx context.Context, url string) (*Bitmap, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ctx context.Context, url string) (*Bitmap, error)

// LoadImage calls f.
func (f ImageLoaderFunc) LoadImage(ctx context.Context, url string) (*Bitmap, error) {
	return f(ctx, url)
}

// LayerContext carries host services into Initialize.
type LayerContext struct {
	Device Device
	Loader ImageLoader

	// OnError receives non-fatal failures such as texture loads. It is
	// called from the render thread.
	OnError func(layerID string, err error)
}

// DrawParams are the per-frame inputs of Draw.
type DrawParams struct {
	// Uniforms are global uniforms such as the view projection matrix.
	Uniforms Uniforms
}

// Renderable is the capability set a host needs to drive a layer. The
// host calls Initialize once, Update whenever props change, Draw once per
// frame and Finalize when the layer is removed, all from one goroutine.
type Renderable interface {
	ID() string
	Shaders() ShaderSource
	Geometry() Geometry
	Initialize(ctx LayerContext) error
	Update(old, next Props) error
	Draw(params DrawParams) error
	Finalize()
}
