// Package wgpu provides the GPU rendering backend for geolayer, built on
// the gogpu/wgpu hardware abstraction layer.
//
// By default Init opens a Vulkan device on the first discrete or
// integrated GPU and compiles the bitmap program to SPIR-V with naga. A
// host that already owns a device, such as a gogpu window, can share it
// with WithDeviceProvider; the backend then never destroys that device.
// WithNoop selects the no-op HAL, which accepts every command and
// renders nothing, for tests and headless validation.
//
// Import the package for its side effect to register the backend:
//
//	import _ "github.com/gogpu/geolayer/backend/wgpu"
package wgpu
