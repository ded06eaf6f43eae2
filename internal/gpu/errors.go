package gpu

import "errors"

var (
	// ErrUnsupportedProgram is returned by NewModel for programs other
	// than the bitmap layer program.
	ErrUnsupportedProgram = errors.New("gpu: unsupported shader program")

	// ErrInvalidGeometry is returned when the texCoords attribute does not
	// match the vertex count.
	ErrInvalidGeometry = errors.New("gpu: invalid geometry")

	// ErrInvalidDimensions is returned for frames or bitmaps with a
	// non-positive side.
	ErrInvalidDimensions = errors.New("gpu: invalid dimensions")

	// ErrNoActiveFrame is returned by Render and EndFrame outside
	// BeginFrame/EndFrame.
	ErrNoActiveFrame = errors.New("gpu: no active frame")

	// ErrFrameActive is returned by BeginFrame while a frame is open.
	ErrFrameActive = errors.New("gpu: frame already active")

	// ErrModelDestroyed is returned by Render after Destroy.
	ErrModelDestroyed = errors.New("gpu: model destroyed")

	// ErrTextureReleased is returned when a destroyed texture is bound.
	ErrTextureReleased = errors.New("gpu: texture released")

	// ErrForeignTexture is returned when a texture of another device is
	// bound.
	ErrForeignTexture = errors.New("gpu: texture belongs to another device")

	// ErrMissingUniform is returned when a required uniform is unset.
	ErrMissingUniform = errors.New("gpu: missing uniform")

	// ErrDeviceDestroyed is returned after Device.Destroy.
	ErrDeviceDestroyed = errors.New("gpu: device destroyed")
)
