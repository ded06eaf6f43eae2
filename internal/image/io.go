// Package image decodes encoded images into straight-alpha RGBA8 pixels.
//
// PNG, JPEG and GIF come from the standard library; WebP, BMP and TIFF
// are registered from golang.org/x/image.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")

	// ErrTooLarge is returned when an image exceeds the configured pixel
	// limit before decoding.
	ErrTooLarge = errors.New("image: dimensions exceed limit")
)

// MaxPixels bounds width*height accepted by Decode. Decoding reads the
// header first, so oversized images are rejected before allocation.
const MaxPixels = 1 << 28

// Decoded is a decoded image in RGBA8 form.
type Decoded struct {
	Width  int
	Height int
	// Pix is straight-alpha RGBA, rows top first, stride Width*4.
	Pix    []uint8
	Format string
}

// DecodeBytes decodes an in-memory encoded image.
func DecodeBytes(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image: decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image: %s has no pixels (%dx%d)", format, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image: decode %s: %w", format, err)
	}
	n := ToNRGBA(img)
	return &Decoded{
		Width:  n.Rect.Dx(),
		Height: n.Rect.Dy(),
		Pix:    n.Pix,
		Format: format,
	}, nil
}
