package geolayer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Bitmap is an in-memory RGBA8 pixel buffer with straight (non
// premultiplied) alpha. Rows are tightly packed, top row first.
type Bitmap struct {
	width  int
	height int
	pix    []uint8
}

// NewBitmap creates a transparent bitmap.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// NewBitmapFromPix wraps an existing RGBA8 buffer. len(pix) must be
// width*height*4.
func NewBitmapFromPix(width, height int, pix []uint8) (*Bitmap, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return nil, fmt.Errorf("geolayer: bitmap %dx%d needs %d bytes, got %d",
			width, height, width*height*4, len(pix))
	}
	return &Bitmap{width: width, height: height, pix: pix}, nil
}

// BitmapFromImage copies img into a new bitmap.
func BitmapFromImage(img image.Image) *Bitmap {
	b := img.Bounds()
	bm := NewBitmap(b.Dx(), b.Dy())
	if n, ok := img.(*image.NRGBA); ok && n.Stride == b.Dx()*4 && n.Rect.Min == (image.Point{}) {
		copy(bm.pix, n.Pix)
		return bm
	}
	dst := &image.NRGBA{Pix: bm.pix, Stride: bm.width * 4, Rect: image.Rect(0, 0, bm.width, bm.height)}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return bm
}

// Width returns the width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Pix returns the raw pixel data.
func (b *Bitmap) Pix() []uint8 { return b.pix }

// Set writes one pixel. Out of range coordinates are ignored.
func (b *Bitmap) Set(x, y int, c Color) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := (y*b.width + x) * 4
	b.pix[i+0] = c.R
	b.pix[i+1] = c.G
	b.pix[i+2] = c.B
	b.pix[i+3] = c.A
}

// Pixel reads one pixel. Out of range coordinates return Transparent.
func (b *Bitmap) Pixel(x, y int) Color {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Transparent
	}
	i := (y*b.width + x) * 4
	return Color{R: b.pix[i+0], G: b.pix[i+1], B: b.pix[i+2], A: b.pix[i+3]}
}

// Fill sets every pixel to c.
func (b *Bitmap) Fill(c Color) {
	for i := 0; i < len(b.pix); i += 4 {
		b.pix[i+0] = c.R
		b.pix[i+1] = c.G
		b.pix[i+2] = c.B
		b.pix[i+3] = c.A
	}
}

// ToImage returns an image.NRGBA sharing the pixel data.
func (b *Bitmap) ToImage() *image.NRGBA {
	return &image.NRGBA{Pix: b.pix, Stride: b.width * 4, Rect: image.Rect(0, 0, b.width, b.height)}
}

// SavePNG writes the bitmap to a PNG file.
func (b *Bitmap) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, b.ToImage()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// At implements image.Image.
func (b *Bitmap) At(x, y int) color.Color {
	return b.Pixel(x, y)
}

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model {
	return color.NRGBAModel
}
