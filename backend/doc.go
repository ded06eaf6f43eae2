// Package backend provides a pluggable rendering backend abstraction.
//
// A backend owns a geolayer.Device and a frame target. Layers create
// their models and textures on the device; RenderFrame binds a target,
// runs the draw callback and reads the pixels back.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import _ "github.com/gogpu/geolayer/backend/software"
//	import _ "github.com/gogpu/geolayer/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b := backend.Default()
//	b := backend.Get(backend.BackendSoftware)
//
// InitDefault walks the priority list and returns the first backend
// whose Init succeeds, so a machine without a GPU ends up on software.
//
// # Available Backends
//
//   - "wgpu": Vulkan via gogpu/wgpu HAL
//   - "software": CPU rasterizer (always available)
package backend
