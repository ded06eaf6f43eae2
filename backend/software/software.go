package software

import (
	"fmt"
	"sync"

	"github.com/gogpu/geolayer"
	"github.com/gogpu/geolayer/backend"
)

// Backend is the CPU rendering backend.
type Backend struct {
	mu          sync.Mutex
	device      *Device
	initialized bool
}

var _ backend.RenderBackend = (*Backend)(nil)

// init registers the software backend on package import.
func init() {
	backend.Register(backend.BackendSoftware, func() backend.RenderBackend {
		return New()
	})
}

// New creates a software backend. It must be initialized with Init.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendSoftware
}

// Init creates the device. It never fails.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	b.device = NewDevice()
	b.initialized = true
	return nil
}

// Close releases the device.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.device = nil
	b.initialized = false
}

// Device returns the CPU device, or nil before Init.
func (b *Backend) Device() geolayer.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.device == nil {
		return nil
	}
	return b.device
}

// RenderFrame binds a cleared frame, runs draw and returns the result.
func (b *Backend) RenderFrame(width, height int, draw func() error) (*geolayer.Bitmap, error) {
	b.mu.Lock()
	dev := b.device
	b.mu.Unlock()
	if dev == nil {
		return nil, backend.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", backend.ErrInvalidSize, width, height)
	}

	frame := NewFrame(width, height)
	dev.Bind(frame)
	defer dev.Bind(nil)

	if draw != nil {
		if err := draw(); err != nil {
			return nil, err
		}
	}
	return frame.Bitmap(), nil
}
