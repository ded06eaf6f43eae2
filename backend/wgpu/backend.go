package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/geolayer"
	"github.com/gogpu/geolayer/backend"
	"github.com/gogpu/geolayer/internal/gpu"
)

// GPUInfo describes the adapter a backend runs on.
type GPUInfo struct {
	// Name is the adapter name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Shared reports whether the device came from a provider.
	Shared bool
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	if g.Shared {
		return "shared device"
	}
	return fmt.Sprintf("%s (%v)", g.Name, g.DeviceType)
}

// Backend is the GPU rendering backend.
//
// Backend is safe for concurrent use from multiple goroutines. Frames are
// serialized.
type Backend struct {
	mu      sync.Mutex
	frameMu sync.Mutex
	opts    options

	instance  hal.Instance
	halDevice hal.Device
	queue     hal.Queue
	external  bool

	device      *gpu.Device
	info        GPUInfo
	initialized bool
}

var _ backend.RenderBackend = (*Backend)(nil)

// init registers the wgpu backend on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() backend.RenderBackend {
		return New()
	})
}

// New creates a GPU backend. It must be initialized with Init.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWGPU
}

// Info returns the adapter description. It is zero before Init.
func (b *Backend) Info() GPUInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info
}

// Init opens or adopts a HAL device and wraps it in a geolayer device.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	gpu.SetLogger(geolayer.Logger())

	preferSPIRV := false
	var err error
	switch {
	case b.opts.provider != nil:
		err = b.adoptProvider()
	case b.opts.noop:
		err = b.openNoop()
	default:
		err = b.openVulkan()
		preferSPIRV = true
	}
	if err != nil {
		b.releaseHAL()
		return err
	}
	if b.opts.spirv != nil {
		preferSPIRV = *b.opts.spirv
	}

	b.device = gpu.NewDevice(b.halDevice, b.queue, gpu.Config{PreferSPIRV: preferSPIRV})
	b.initialized = true
	geolayer.Logger().Info("wgpu: backend initialized", "gpu", b.info.String(), "spirv", preferSPIRV)
	return nil
}

func (b *Backend) adoptProvider() error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := b.opts.provider.(halProvider)
	if !ok {
		return ErrInvalidProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: HalDevice is not hal.Device", ErrInvalidProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: HalQueue is not hal.Queue", ErrInvalidProvider)
	}
	b.halDevice = device
	b.queue = queue
	b.external = true
	b.info = GPUInfo{Shared: true}
	return nil
}

func (b *Backend) openNoop() error {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	b.instance = instance
	return b.openAdapter()
}

func (b *Backend) openVulkan() error {
	api, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return ErrNoGPUBackend
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %w", ErrNoGPUBackend, err)
	}
	b.instance = instance
	return b.openAdapter()
}

// openAdapter opens the first discrete or integrated adapter, falling
// back to whatever is listed first.
func (b *Backend) openAdapter() error {
	adapters := b.instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceCreationFailed, err)
	}
	b.halDevice = openDev.Device
	b.queue = openDev.Queue
	b.info = GPUInfo{Name: selected.Info.Name, DeviceType: selected.Info.DeviceType}
	return nil
}

// Close releases the geolayer device and, unless it was shared, the HAL
// device and instance.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	b.releaseHAL()
	b.initialized = false
}

func (b *Backend) releaseHAL() {
	if !b.external && b.halDevice != nil {
		b.halDevice.Destroy()
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.halDevice = nil
	b.queue = nil
	b.external = false
}

// Device returns the geolayer device, or nil before Init.
func (b *Backend) Device() geolayer.Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.device == nil {
		return nil
	}
	return b.device
}

// RenderFrame opens a frame, runs draw and reads the frame back.
func (b *Backend) RenderFrame(width, height int, draw func() error) (*geolayer.Bitmap, error) {
	b.frameMu.Lock()
	defer b.frameMu.Unlock()

	b.mu.Lock()
	dev := b.device
	b.mu.Unlock()
	if dev == nil {
		return nil, backend.ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", backend.ErrInvalidSize, width, height)
	}
	if err := dev.BeginFrame(width, height); err != nil {
		return nil, err
	}
	if draw != nil {
		if err := draw(); err != nil {
			dev.AbortFrame()
			return nil, err
		}
	}
	return dev.EndFrame()
}
