package wgpu

import "errors"

var (
	// ErrNoGPUBackend is returned when the Vulkan HAL is not available.
	ErrNoGPUBackend = errors.New("wgpu: no GPU backend available")

	// ErrNoAdapter is returned when no adapter is found.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

	// ErrDeviceCreationFailed is returned when the logical device cannot
	// be opened.
	ErrDeviceCreationFailed = errors.New("wgpu: device creation failed")

	// ErrInvalidProvider is returned when a device provider does not expose
	// HAL types.
	ErrInvalidProvider = errors.New("wgpu: provider does not expose HAL device and queue")
)
