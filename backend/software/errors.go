package software

import "errors"

var (
	// ErrUnsupportedProgram is returned by NewModel for programs the CPU
	// pipeline has no implementation of.
	ErrUnsupportedProgram = errors.New("software: unsupported shader program")

	// ErrInvalidGeometry is returned when the texCoords attribute does not
	// match the vertex count.
	ErrInvalidGeometry = errors.New("software: invalid geometry")

	// ErrNoTarget is returned by Render outside RenderFrame.
	ErrNoTarget = errors.New("software: no frame target bound")

	// ErrMissingUniform is returned when a required uniform is unset or has
	// the wrong type.
	ErrMissingUniform = errors.New("software: missing uniform")

	// ErrModelDestroyed is returned by Render after Destroy.
	ErrModelDestroyed = errors.New("software: model destroyed")

	// ErrForeignTexture is returned when a texture from another device is
	// bound.
	ErrForeignTexture = errors.New("software: texture belongs to another device")

	// ErrTextureDestroyed is returned when a destroyed texture is bound.
	ErrTextureDestroyed = errors.New("software: texture destroyed")
)
