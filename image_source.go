package geolayer

import (
	"fmt"
	"image"
)

// ImageSource is the image a BitmapLayer displays. It is one of:
//
//   - [URL]: fetched and decoded asynchronously by the layer's ImageLoader
//   - [TextureHandle]: an existing GPU texture adopted as-is
//   - [BitmapImage]: in-memory pixels uploaded into a new texture
//
// A nil ImageSource means no image; the layer draws nothing.
type ImageSource interface {
	imageSource()
}

// URL references a remote or local image. Supported schemes depend on the
// ImageLoader; the default loader accepts http, https, file and data URLs
// as well as plain paths.
type URL string

// TextureHandle adopts a texture created elsewhere. The layer never
// destroys adopted textures. The handle's dynamic type must be comparable.
type TextureHandle struct {
	Texture Texture
}

// BitmapImage uploads in-memory pixels into a texture owned by the layer.
type BitmapImage struct {
	Bitmap *Bitmap
}

func (URL) imageSource()           {}
func (TextureHandle) imageSource() {}
func (BitmapImage) imageSource()   {}

// ImageFrom resolves a dynamically typed image value, such as one decoded
// from a scene file, into an ImageSource. Accepted values are strings,
// Texture implementations, *Bitmap, image.Image and ImageSource values.
func ImageFrom(v any) (ImageSource, error) {
	switch img := v.(type) {
	case nil:
		return nil, nil
	case ImageSource:
		return img, nil
	case string:
		return URL(img), nil
	case Texture:
		return TextureHandle{Texture: img}, nil
	case *Bitmap:
		return BitmapImage{Bitmap: img}, nil
	case image.Image:
		return BitmapImage{Bitmap: BitmapFromImage(img)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedImageReference, v)
	}
}

// sameImage reports whether a and b reference the same image.
func sameImage(a, b ImageSource) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case URL:
		y, ok := b.(URL)
		return ok && x == y
	case TextureHandle:
		y, ok := b.(TextureHandle)
		return ok && x.Texture == y.Texture
	case BitmapImage:
		y, ok := b.(BitmapImage)
		return ok && x.Bitmap == y.Bitmap
	default:
		return false
	}
}

func describeImage(s ImageSource) string {
	switch x := s.(type) {
	case nil:
		return "none"
	case URL:
		return string(x)
	case TextureHandle:
		return fmt.Sprintf("texture %T", x.Texture)
	case BitmapImage:
		if x.Bitmap == nil {
			return "bitmap <nil>"
		}
		return fmt.Sprintf("bitmap %dx%d", x.Bitmap.Width(), x.Bitmap.Height())
	default:
		return fmt.Sprintf("%T", s)
	}
}
