package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/geolayer"
)

// Texture is a sampled RGBA8Unorm texture holding straight-alpha texels.
type Texture struct {
	dev      *Device
	width    int
	height   int
	tex      hal.Texture
	view     hal.TextureView
	released bool
}

var _ geolayer.Texture = (*Texture)(nil)

// Width returns the width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in texels.
func (t *Texture) Height() int { return t.height }

// Destroy releases the device texture. Models that still reference it
// fail their next Render with ErrTextureReleased.
func (t *Texture) Destroy() {
	if t.released {
		return
	}
	t.released = true
	t.dev.forgetTexture(t)
	t.release()
}

func (t *Texture) release() {
	if t.view != nil {
		t.dev.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.dev.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

func (d *Device) uploadTexture(b *geolayer.Bitmap) (*Texture, error) {
	if b == nil || b.Width() <= 0 || b.Height() <= 0 {
		return nil, fmt.Errorf("%w: empty bitmap", ErrInvalidDimensions)
	}
	w := uint32(b.Width())  //nolint:gosec // checked positive above
	h := uint32(b.Height()) //nolint:gosec // checked positive above
	t := &Texture{dev: d, width: b.Width(), height: b.Height()}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "bitmap_texture",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create bitmap texture: %w", err)
	}
	t.tex = tex

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "bitmap_texture_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.release()
		return nil, fmt.Errorf("create bitmap texture view: %w", err)
	}
	t.view = view

	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		b.Pix(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return t, nil
}
