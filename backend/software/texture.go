package software

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/geolayer"
)

// Texture is an RGBA8 image held in memory, straight alpha, rows top
// first.
type Texture struct {
	dev       *Device
	width     int
	height    int
	pix       []uint8
	destroyed bool
}

var _ geolayer.Texture = (*Texture)(nil)

// Width returns the width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the height in texels.
func (t *Texture) Height() int { return t.height }

// Destroy releases the texel memory.
func (t *Texture) Destroy() {
	t.pix = nil
	t.destroyed = true
}

func (t *Texture) texel(x, y int) [4]float32 {
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	i := (y*t.width + x) * 4
	p := t.pix[i : i+4 : i+4]
	return [4]float32{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

// Sample filters the texture bilinearly at normalized (s, t) with
// clamp-to-edge addressing. (0, 0) is the top-left corner of the first
// texel row. Channels are not premultiplied before filtering, matching an
// RGBA8Unorm texture sampled with a linear sampler.
func (t *Texture) Sample(s, tc float32) [4]float32 {
	x := s*float32(t.width) - 0.5
	y := tc*float32(t.height) - 0.5
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	fx := x - x0
	fy := y - y0
	ix, iy := int(x0), int(y0)

	c00 := t.texel(ix, iy)
	c10 := t.texel(ix+1, iy)
	c01 := t.texel(ix, iy+1)
	c11 := t.texel(ix+1, iy+1)

	var out [4]float32
	for i := range out {
		top := c00[i] + (c10[i]-c00[i])*fx
		bottom := c01[i] + (c11[i]-c01[i])*fx
		out[i] = top + (bottom-top)*fy
	}
	return out
}
