package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/geolayer"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	d := NewDevice(device, queue, Config{})
	t.Cleanup(func() {
		d.Destroy()
		cleanup()
	})
	return d
}

func fullScreenUniforms() geolayer.Uniforms {
	return geolayer.Uniforms{
		geolayer.UniformLeftBottom:  [3]float32{-1, -1, 0},
		geolayer.UniformRightBottom: [3]float32{1, -1, 0},
		geolayer.UniformRightTop:    [3]float32{1, 1, 0},
		geolayer.UniformLeftTop:     [3]float32{-1, 1, 0},
		geolayer.UniformOpacity:     float32(1),
	}
}

func newBitmapModel(t *testing.T, d *Device) *Model {
	t.Helper()
	m, err := d.NewModel(geolayer.ModelDescriptor{
		ID:       "test",
		Shaders:  geolayer.BitmapShaders(),
		Geometry: geolayer.QuadGeometry(),
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m.(*Model)
}

func newSolidTexture(t *testing.T, d *Device, c geolayer.Color) geolayer.Texture {
	t.Helper()
	bm := geolayer.NewBitmap(2, 2)
	bm.Fill(c)
	tex, err := d.NewTexture(bm)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	return tex
}

func floatAt(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestPackBitmapUniforms(t *testing.T) {
	u := geolayer.Uniforms{
		geolayer.UniformLeftBottom:       [3]float32{1, 2, 3},
		geolayer.UniformRightBottom:      [3]float32{4, 5, 6},
		geolayer.UniformRightTop:         [3]float32{7, 8, 9},
		geolayer.UniformLeftTop:          [3]float32{10, 11, 12},
		geolayer.UniformDesaturate:       float32(0.25),
		geolayer.UniformOpacity:          float32(0.5),
		geolayer.UniformTransparentColor: [4]float32{1, 2, 3, 4},
		geolayer.UniformTintColor:        [3]float32{255, 128, 0},
	}
	buf, err := packBitmapUniforms(u)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]float32{
		0: 1, 4: 2, 8: 3, 12: 0.25,
		16: 4, 20: 5, 24: 6, 28: 0.5,
		32: 7, 36: 8, 40: 9,
		48: 10, 52: 11, 56: 12,
		64: 1, 68: 2, 72: 3, 76: 4,
		80: 255, 84: 128, 88: 0,
	}
	for off, v := range want {
		if got := floatAt(buf[:], off); got != v {
			t.Errorf("offset %d = %v, want %v", off, got, v)
		}
	}
}

func TestPackBitmapUniformsDefaults(t *testing.T) {
	u := fullScreenUniforms()
	delete(u, geolayer.UniformOpacity)
	buf, err := packBitmapUniforms(u)
	if err != nil {
		t.Fatal(err)
	}
	if got := floatAt(buf[:], 28); got != 1 {
		t.Errorf("default opacity = %v, want 1", got)
	}
	if got := floatAt(buf[:], 80); got != 255 {
		t.Errorf("default tint = %v, want 255", got)
	}

	delete(u, geolayer.UniformRightTop)
	if _, err := packBitmapUniforms(u); !errors.Is(err, ErrMissingUniform) {
		t.Errorf("err = %v, want ErrMissingUniform", err)
	}
}

func TestPackProjectUniforms(t *testing.T) {
	buf := packProjectUniforms(geolayer.Uniforms{})
	for i, want := range [16]float32{0: 1, 5: 1, 10: 1, 15: 1} {
		if got := floatAt(buf[:], 4*i); got != want {
			t.Errorf("identity[%d] = %v, want %v", i, got, want)
		}
	}

	vp := geolayer.Viewport{Width: 100, Height: 50, Zoom: 1, CoordinateSystem: geolayer.CoordinateLngLat}
	buf = packProjectUniforms(vp.Uniforms())
	m := vp.ViewProjectionMatrix()
	for i := range m {
		if got := floatAt(buf[:], 4*i); got != m[i] {
			t.Errorf("m[%d] = %v, want %v", i, got, m[i])
		}
	}
	if got := binary.LittleEndian.Uint32(buf[64:]); got != 1 {
		t.Errorf("coordinate system = %d, want 1", got)
	}
}

func TestPackPickingUniforms(t *testing.T) {
	if buf := packPickingUniforms(nil); binary.LittleEndian.Uint32(buf[:]) != 0 {
		t.Error("picking should be inactive by default")
	}
	buf := packPickingUniforms(geolayer.Uniforms{geolayer.UniformPickingActive: true})
	if binary.LittleEndian.Uint32(buf[:]) != 1 {
		t.Error("picking should be active")
	}
}

func TestUnpremultiplyRows(t *testing.T) {
	// Two pixels per row, row stride padded to 12 bytes.
	src := []byte{
		255, 0, 0, 255, 64, 0, 0, 128, 9, 9, 9, 9,
		0, 0, 0, 0, 10, 20, 30, 255, 9, 9, 9, 9,
	}
	dst := make([]byte, 16)
	unpremultiplyRows(dst, src, 8, 12, 2)
	want := []byte{
		255, 0, 0, 255, 128, 0, 0, 128,
		0, 0, 0, 0, 10, 20, 30, 255,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestRenderFrameNoop(t *testing.T) {
	d := newTestDevice(t)
	m := newBitmapModel(t, d)
	m.SetUniforms(fullScreenUniforms())
	tex := newSolidTexture(t, d, geolayer.RGB(255, 0, 0))

	if err := d.BeginFrame(300, 2); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if err := m.Render(geolayer.Uniforms{geolayer.UniformBitmapTexture: tex}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out, err := d.EndFrame()
	if err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if out.Width() != 300 || out.Height() != 2 {
		t.Errorf("frame size = %dx%d, want 300x2", out.Width(), out.Height())
	}
	if d.pipeline == nil || d.pipeline.pipeline == nil {
		t.Error("pipeline should exist after NewModel")
	}
}

func TestUniformWritesOnlyWhenChanged(t *testing.T) {
	d := newTestDevice(t)
	m := newBitmapModel(t, d)
	m.SetUniforms(fullScreenUniforms())
	tex := newSolidTexture(t, d, geolayer.RGB(0, 255, 0))
	globals := geolayer.Uniforms{geolayer.UniformBitmapTexture: tex}

	if err := d.BeginFrame(4, 4); err != nil {
		t.Fatal(err)
	}
	defer d.AbortFrame()

	render := func() {
		t.Helper()
		if err := m.Render(globals); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}

	render()
	if w, r, n := m.Stats(); w != 3 || r != 1 || n != 1 {
		t.Fatalf("first render stats = (%d, %d, %d), want (3, 1, 1)", w, r, n)
	}

	render()
	if w, r, _ := m.Stats(); w != 3 || r != 1 {
		t.Errorf("unchanged render stats = (%d, %d), want (3, 1)", w, r)
	}

	m.SetUniforms(geolayer.Uniforms{geolayer.UniformOpacity: float32(0.5)})
	render()
	if w, _, _ := m.Stats(); w != 4 {
		t.Errorf("writes after opacity change = %d, want 4", w)
	}

	globals = globals.Merge(geolayer.Uniforms{geolayer.UniformPickingActive: true})
	render()
	if w, _, _ := m.Stats(); w != 5 {
		t.Errorf("writes after picking change = %d, want 5", w)
	}

	globals[geolayer.UniformBitmapTexture] = newSolidTexture(t, d, geolayer.RGB(0, 0, 255))
	render()
	if w, r, n := m.Stats(); w != 5 || r != 2 || n != 5 {
		t.Errorf("stats after texture change = (%d, %d, %d), want (5, 2, 5)", w, r, n)
	}
}

func TestDeviceErrors(t *testing.T) {
	d := newTestDevice(t)

	_, err := d.NewModel(geolayer.ModelDescriptor{Shaders: geolayer.ShaderSource{Name: "path"}})
	if !errors.Is(err, ErrUnsupportedProgram) {
		t.Errorf("NewModel err = %v, want ErrUnsupportedProgram", err)
	}
	_, err = d.NewModel(geolayer.ModelDescriptor{Shaders: geolayer.BitmapShaders(), Geometry: geolayer.Geometry{VertexCount: 3}})
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("NewModel err = %v, want ErrInvalidGeometry", err)
	}
	if _, err := d.NewTexture(nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("NewTexture(nil) err = %v, want ErrInvalidDimensions", err)
	}
	if err := d.BeginFrame(0, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("BeginFrame(0, 1) err = %v, want ErrInvalidDimensions", err)
	}
	if _, err := d.EndFrame(); !errors.Is(err, ErrNoActiveFrame) {
		t.Errorf("EndFrame err = %v, want ErrNoActiveFrame", err)
	}

	m := newBitmapModel(t, d)
	m.SetUniforms(fullScreenUniforms())
	tex := newSolidTexture(t, d, geolayer.White)
	if err := m.Render(geolayer.Uniforms{geolayer.UniformBitmapTexture: tex}); !errors.Is(err, ErrNoActiveFrame) {
		t.Errorf("Render err = %v, want ErrNoActiveFrame", err)
	}

	if err := d.BeginFrame(2, 2); err != nil {
		t.Fatal(err)
	}
	if err := d.BeginFrame(2, 2); !errors.Is(err, ErrFrameActive) {
		t.Errorf("second BeginFrame err = %v, want ErrFrameActive", err)
	}
	if err := m.Render(nil); !errors.Is(err, ErrMissingUniform) {
		t.Errorf("Render without texture err = %v, want ErrMissingUniform", err)
	}

	other := NewDevice(d.device, d.queue, Config{})
	defer other.Destroy()
	foreign := newSolidTexture(t, other, geolayer.White)
	if err := m.Render(geolayer.Uniforms{geolayer.UniformBitmapTexture: foreign}); !errors.Is(err, ErrForeignTexture) {
		t.Errorf("Render with foreign texture err = %v, want ErrForeignTexture", err)
	}

	tex.Destroy()
	if err := m.Render(geolayer.Uniforms{geolayer.UniformBitmapTexture: tex}); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("Render with released texture err = %v, want ErrTextureReleased", err)
	}
	d.AbortFrame()

	m.Destroy()
	if err := m.Render(nil); !errors.Is(err, ErrModelDestroyed) {
		t.Errorf("Render after Destroy err = %v, want ErrModelDestroyed", err)
	}

	d.Destroy()
	if _, err := d.NewTexture(geolayer.NewBitmap(1, 1)); !errors.Is(err, ErrDeviceDestroyed) {
		t.Errorf("NewTexture after Destroy err = %v, want ErrDeviceDestroyed", err)
	}
}

func TestDestroyReleasesResources(t *testing.T) {
	d := newTestDevice(t)
	m := newBitmapModel(t, d)
	tex := newSolidTexture(t, d, geolayer.White).(*Texture)

	d.Destroy()
	if !m.destroyed || m.vertBuf != nil {
		t.Error("Destroy should release models")
	}
	if !tex.released || tex.tex != nil {
		t.Error("Destroy should release textures")
	}
	// Idempotent.
	d.Destroy()
	m.Destroy()
	tex.Destroy()
}

func TestBitmapLayerOnNoopDevice(t *testing.T) {
	d := newTestDevice(t)
	bm := geolayer.NewBitmap(4, 4)
	bm.Fill(geolayer.RGB(10, 20, 30))

	layer := geolayer.NewBitmapLayer(geolayer.Props{
		Image:        geolayer.BitmapImage{Bitmap: bm},
		BitmapBounds: geolayer.Rect(-122.52, 37.70, -122.35, 37.82),
	})
	if err := layer.Initialize(geolayer.LayerContext{Device: d}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer layer.Finalize()

	vp := geolayer.Viewport{Width: 64, Height: 64, Longitude: -122.43, Latitude: 37.76, Zoom: 11,
		CoordinateSystem: geolayer.CoordinateLngLat}
	if err := d.BeginFrame(vp.Width, vp.Height); err != nil {
		t.Fatal(err)
	}
	if err := layer.Draw(geolayer.DrawParams{Uniforms: vp.Uniforms()}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if _, err := d.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if _, _, draws := layer.Model().(*Model).Stats(); draws != 1 {
		t.Errorf("draws = %d, want 1", draws)
	}
}
