package image

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA returns img as a tightly packed *image.NRGBA anchored at the
// origin. Images already in that form are returned as-is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == b.Dx()*4 {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Fit scales img down so that neither side exceeds maxSide, preserving
// the aspect ratio. Smaller images are returned unchanged.
func Fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}

// FitDecoded applies Fit to a decoded image.
func FitDecoded(d *Decoded, maxSide int) *Decoded {
	if maxSide <= 0 || (d.Width <= maxSide && d.Height <= maxSide) {
		return d
	}
	src := &image.NRGBA{Pix: d.Pix, Stride: d.Width * 4, Rect: image.Rect(0, 0, d.Width, d.Height)}
	n := ToNRGBA(Fit(src, maxSide))
	return &Decoded{Width: n.Rect.Dx(), Height: n.Rect.Dy(), Pix: n.Pix, Format: d.Format}
}
