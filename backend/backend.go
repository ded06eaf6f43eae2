package backend

import (
	"errors"

	"github.com/gogpu/geolayer"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrInvalidSize is returned for frames with a non-positive side.
	ErrInvalidSize = errors.New("backend: invalid frame size")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU rasterizer.
	BackendSoftware = "software"
	// BackendWGPU is the name of the GPU backend built on gogpu/wgpu.
	BackendWGPU = "wgpu"
)

// RenderBackend is a rendering library layers can draw through.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type RenderBackend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init initializes the backend.
	// This should be called before any rendering operations.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// Device returns the device layers create models and textures on.
	// It is nil before Init.
	Device() geolayer.Device

	// RenderFrame clears a width x height target to transparent black,
	// runs draw with that target bound and returns its pixels. Models
	// rendered inside draw land in the frame.
	RenderFrame(width, height int, draw func() error) (*geolayer.Bitmap, error)
}
