package software

import (
	"fmt"
	"sync"

	"github.com/gogpu/geolayer"
)

// Device is a CPU geolayer.Device. Models render into the frame bound
// with Bind.
type Device struct {
	mu     sync.Mutex
	target *Frame
}

var _ geolayer.Device = (*Device)(nil)

// NewDevice creates a device with no target bound.
func NewDevice() *Device {
	return &Device{}
}

// NewModel validates the program and geometry and returns a model.
func (d *Device) NewModel(desc geolayer.ModelDescriptor) (geolayer.Model, error) {
	if desc.Shaders.Name != geolayer.BitmapShaderName {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProgram, desc.Shaders.Name)
	}
	tc := desc.Geometry.Attributes[geolayer.AttributeTexCoords]
	if desc.Geometry.VertexCount <= 0 || len(tc) != desc.Geometry.VertexCount*2 {
		return nil, fmt.Errorf("%w: %d vertices, %d %s components",
			ErrInvalidGeometry, desc.Geometry.VertexCount, len(tc), geolayer.AttributeTexCoords)
	}
	geolayer.Logger().Debug("software: model created", "model", desc.ID, "vertices", desc.Geometry.VertexCount)
	return &Model{
		dev:       d,
		id:        desc.ID,
		topology:  desc.Geometry.Topology,
		count:     desc.Geometry.VertexCount,
		texCoords: append([]float32(nil), tc...),
		uniforms:  geolayer.Uniforms{},
	}, nil
}

// NewTexture copies b into a new texture.
func (d *Device) NewTexture(b *geolayer.Bitmap) (geolayer.Texture, error) {
	if b == nil || b.Width() <= 0 || b.Height() <= 0 {
		return nil, fmt.Errorf("software: empty bitmap")
	}
	return &Texture{
		dev:    d,
		width:  b.Width(),
		height: b.Height(),
		pix:    append([]uint8(nil), b.Pix()...),
	}, nil
}

// Bind makes f the target of subsequent Render calls. Passing nil unbinds.
func (d *Device) Bind(f *Frame) {
	d.mu.Lock()
	d.target = f
	d.mu.Unlock()
}

func (d *Device) currentTarget() *Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

func (d *Device) texture(u geolayer.Uniforms) (*Texture, error) {
	t, ok := u.Texture(geolayer.UniformBitmapTexture)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingUniform, geolayer.UniformBitmapTexture)
	}
	tex, ok := t.(*Texture)
	if !ok || tex.dev != d {
		return nil, ErrForeignTexture
	}
	if tex.destroyed {
		return nil, ErrTextureDestroyed
	}
	return tex, nil
}
