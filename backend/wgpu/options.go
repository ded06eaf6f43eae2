package wgpu

import "github.com/gogpu/gpucontext"

// Option configures a Backend.
type Option func(*options)

type options struct {
	noop     bool
	provider gpucontext.DeviceProvider
	spirv    *bool
}

// WithNoop selects the no-op HAL instead of Vulkan.
func WithNoop() Option {
	return func(o *options) {
		o.noop = true
	}
}

// WithDeviceProvider shares the HAL device of an external provider. The
// provider must also expose HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithSPIRV overrides whether the bitmap program is compiled to SPIR-V
// before it reaches the device. The default is on for Vulkan and off
// otherwise.
func WithSPIRV(enabled bool) Option {
	return func(o *options) {
		o.spirv = &enabled
	}
}
