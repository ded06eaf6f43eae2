package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/geolayer"
)

// Config tunes a Device.
type Config struct {
	// PreferSPIRV compiles the bitmap program to SPIR-V with naga before
	// handing it to the device. Vulkan devices want this; devices that
	// accept WGSL directly do not need it.
	PreferSPIRV bool
}

// Device implements geolayer.Device on a HAL device and queue it does not
// own. The pipeline is created lazily on the first NewModel.
type Device struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	cfg    Config

	pipeline *bitmapPipeline
	frame    *frame

	models    map[*Model]struct{}
	textures  map[*Texture]struct{}
	destroyed bool
}

var _ geolayer.Device = (*Device)(nil)

// NewDevice wraps device and queue.
func NewDevice(device hal.Device, queue hal.Queue, cfg Config) *Device {
	return &Device{
		device:   device,
		queue:    queue,
		cfg:      cfg,
		models:   make(map[*Model]struct{}),
		textures: make(map[*Texture]struct{}),
	}
}

// NewModel creates a model for the bitmap program.
func (d *Device) NewModel(desc geolayer.ModelDescriptor) (geolayer.Model, error) {
	if desc.Shaders.Name != geolayer.BitmapShaderName {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProgram, desc.Shaders.Name)
	}
	tc := desc.Geometry.Attributes[geolayer.AttributeTexCoords]
	if desc.Geometry.VertexCount <= 0 || len(tc) != desc.Geometry.VertexCount*2 ||
		desc.Geometry.Topology != geolayer.TriangleList {
		return nil, fmt.Errorf("%w: %d vertices, %d %s components",
			ErrInvalidGeometry, desc.Geometry.VertexCount, len(tc), geolayer.AttributeTexCoords)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil, ErrDeviceDestroyed
	}
	if err := d.ensurePipeline(); err != nil {
		return nil, err
	}
	m, err := d.createModel(desc, tc)
	if err != nil {
		return nil, err
	}
	d.models[m] = struct{}{}
	slogger().Debug("gpu: model created", "model", desc.ID, "spirv", d.pipeline.spirv)
	return m, nil
}

// NewTexture uploads b into a new texture.
func (d *Device) NewTexture(b *geolayer.Bitmap) (geolayer.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil, ErrDeviceDestroyed
	}
	t, err := d.uploadTexture(b)
	if err != nil {
		return nil, err
	}
	d.textures[t] = struct{}{}
	return t, nil
}

// BeginFrame opens a width x height frame cleared to transparent black.
// Models render into it until EndFrame.
func (d *Device) BeginFrame(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDeviceDestroyed
	}
	if d.frame != nil {
		return ErrFrameActive
	}
	f, err := d.newFrame(width, height)
	if err != nil {
		return err
	}
	if err := d.pass(f, "frame_clear", true, nil); err != nil {
		f.destroy(d.device)
		return err
	}
	d.frame = f
	return nil
}

// EndFrame reads the frame back and closes it.
func (d *Device) EndFrame() (*geolayer.Bitmap, error) {
	d.mu.Lock()
	f := d.frame
	d.frame = nil
	d.mu.Unlock()
	if f == nil {
		return nil, ErrNoActiveFrame
	}
	defer f.destroy(d.device)
	return d.readback(f)
}

// AbortFrame closes the active frame without reading it back.
func (d *Device) AbortFrame() {
	d.mu.Lock()
	f := d.frame
	d.frame = nil
	d.mu.Unlock()
	if f != nil {
		f.destroy(d.device)
	}
}

// Destroy releases every model, texture and pipeline object created
// through d. The HAL device itself is left to its owner.
func (d *Device) Destroy() {
	d.AbortFrame()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true
	for m := range d.models {
		m.destroyed = true
		m.release()
	}
	for t := range d.textures {
		t.released = true
		t.release()
	}
	clear(d.models)
	clear(d.textures)
	if d.pipeline != nil {
		d.pipeline.destroy()
		d.pipeline = nil
	}
}

// ensurePipeline creates the bitmap pipeline on first use.
func (d *Device) ensurePipeline() error {
	if d.pipeline != nil {
		return nil
	}
	p, err := newBitmapPipeline(d.device, d.cfg.PreferSPIRV)
	if err != nil {
		return err
	}
	d.pipeline = p
	return nil
}

func (d *Device) activeFrame() *frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

func (d *Device) forgetModel(m *Model) {
	d.mu.Lock()
	delete(d.models, m)
	d.mu.Unlock()
}

func (d *Device) forgetTexture(t *Texture) {
	d.mu.Lock()
	delete(d.textures, t)
	d.mu.Unlock()
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
	if tex.released {
		return nil, ErrTextureReleased
	}
	return tex, nil
}
