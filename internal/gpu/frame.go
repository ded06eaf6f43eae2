package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/geolayer"
)

// copyPitchAlignment is the required BytesPerRow alignment of texture to
// buffer copies.
const copyPitchAlignment = 256

// submitTimeout bounds every fence wait.
const submitTimeout = 5 * time.Second

// frame is the render target of one BeginFrame/EndFrame pair.
type frame struct {
	width  uint32
	height uint32
	tex    hal.Texture
	view   hal.TextureView
}

func (d *Device) newFrame(width, height int) (*frame, error) {
	f := &frame{width: uint32(width), height: uint32(height)} //nolint:gosec // checked positive by caller
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "frame_target",
		Size:          hal.Extent3D{Width: f.width, Height: f.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create frame texture: %w", err)
	}
	f.tex = tex

	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "frame_target_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create frame texture view: %w", err)
	}
	f.view = view
	return f, nil
}

func (f *frame) destroy(device hal.Device) {
	if f.view != nil {
		device.DestroyTextureView(f.view)
		f.view = nil
	}
	if f.tex != nil {
		device.DestroyTexture(f.tex)
		f.tex = nil
	}
}

// pass encodes a render pass over the frame and submits it. The first
// pass of a frame clears it; later passes load the existing contents.
func (d *Device) pass(f *frame, label string, clear bool, record func(rp hal.RenderPassEncoder)) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	loadOp := gputypes.LoadOpLoad
	if clear {
		loadOp = gputypes.LoadOpClear
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       f.view,
			LoadOp:     loadOp,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	if record != nil {
		record(rp)
	}
	rp.End()
	return d.submit(encoder)
}

// readback copies the frame into a staging buffer and returns it as a
// straight-alpha bitmap.
func (d *Device) readback(f *frame) (*geolayer.Bitmap, error) {
	bytesPerRow := f.width * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(f.height)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frame_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "frame_readback"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: f.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(f.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: f.height},
		TextureBase:  hal.ImageCopyTexture{Texture: f.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: f.width, Height: f.height, DepthOrArrayLayers: 1},
	}})
	if err := d.submit(encoder); err != nil {
		return nil, err
	}

	data := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, data); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}

	out := geolayer.NewBitmap(int(f.width), int(f.height))
	unpremultiplyRows(out.Pix(), data, int(bytesPerRow), int(alignedBytesPerRow), int(f.height))
	return out, nil
}

// submit ends encoding, submits and waits for the GPU.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, submitTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// unpremultiplyRows strips row padding from src and converts
// premultiplied RGBA to straight alpha into dst.
func unpremultiplyRows(dst, src []byte, rowBytes, srcStride, rows int) {
	for y := range rows {
		s := src[y*srcStride : y*srcStride+rowBytes]
		o := dst[y*rowBytes : (y+1)*rowBytes]
		for i := 0; i < rowBytes; i += 4 {
			a := s[i+3]
			o[i+3] = a
			switch a {
			case 0:
				o[i], o[i+1], o[i+2] = 0, 0, 0
			case 255:
				o[i], o[i+1], o[i+2] = s[i], s[i+1], s[i+2]
			default:
				for c := range 3 {
					v := (int(s[i+c])*255 + int(a)/2) / int(a)
					o[i+c] = uint8(min(v, 255)) //nolint:gosec // clamped
				}
			}
		}
	}
}
