package software

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/geolayer"
)

// Frame is a render target holding premultiplied RGBA in [0, 1].
type Frame struct {
	width  int
	height int
	pix    []float32
}

// NewFrame creates a frame cleared to transparent black.
func NewFrame(width, height int) *Frame {
	return &Frame{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Clear fills the frame with a straight-alpha color.
func (f *Frame) Clear(c geolayer.Color) {
	n := c.Normalized()
	p := [4]float32{n[0] * n[3], n[1] * n[3], n[2] * n[3], n[3]}
	for i := 0; i < len(f.pix); i += 4 {
		copy(f.pix[i:i+4], p[:])
	}
}

// blend composites a premultiplied source over the pixel at (x, y), the
// equivalent of a premultiplied blend state on an 8-bit unorm target.
func (f *Frame) blend(x, y int, src [4]float32) {
	for i := range src {
		src[i] = clamp01(src[i])
	}
	i := (y*f.width + x) * 4
	d := f.pix[i : i+4 : i+4]
	inv := 1 - src[3]
	for c := range 4 {
		d[c] = src[c] + d[c]*inv
	}
}

// Bitmap converts the frame to straight alpha 8-bit pixels.
func (f *Frame) Bitmap() *geolayer.Bitmap {
	b := geolayer.NewBitmap(f.width, f.height)
	out := b.Pix()
	for i := 0; i < len(f.pix); i += 4 {
		a := clamp01(f.pix[i+3])
		if a == 0 {
			continue
		}
		for c := range 3 {
			out[i+c] = toByte(f.pix[i+c] / a)
		}
		out[i+3] = toByte(a)
	}
	return b
}

func clamp01(v float32) float32 {
	return math32.Min(math32.Max(v, 0), 1)
}

func toByte(v float32) uint8 {
	return uint8(math32.Round(clamp01(v) * 255))
}
