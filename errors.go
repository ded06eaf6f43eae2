package geolayer

import "errors"

var (
	// ErrMalformedBounds is returned when a bounds value is neither a
	// finite rectangle nor a list of four 2- or 3-component points.
	ErrMalformedBounds = errors.New("geolayer: malformed bitmap bounds")

	// ErrUnsupportedImageReference is returned when an image value is not
	// a URL, a texture handle or an in-memory bitmap.
	ErrUnsupportedImageReference = errors.New("geolayer: unsupported image reference")

	// ErrTextureLoadFailed wraps fetch, decode and upload failures. It is
	// delivered to LayerContext.OnError and never returned from Draw.
	ErrTextureLoadFailed = errors.New("geolayer: texture load failed")

	// ErrNotInitialized is returned when a layer is used before Initialize.
	ErrNotInitialized = errors.New("geolayer: layer not initialized")

	// ErrFinalized is returned when a layer is used after Finalize.
	ErrFinalized = errors.New("geolayer: layer finalized")

	// ErrNoImageLoader is reported when a URL image is set but the layer
	// context carries no loader.
	ErrNoImageLoader = errors.New("geolayer: no image loader configured")

	// ErrNoDevice is returned by Initialize when the context has no device.
	ErrNoDevice = errors.New("geolayer: no device in layer context")
)
