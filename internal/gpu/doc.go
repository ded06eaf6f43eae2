// Package gpu implements geolayer.Device on a gogpu/wgpu HAL device.
//
// The bitmap program is assembled from the layer stages and the shared
// shader modules and compiled once per device into a render pipeline
// targeting RGBA8Unorm with premultiplied alpha blending. Each model owns
// a vertex buffer with the quad texture coordinates and three uniform
// buffers:
//
//	binding 0  bitmap uniforms (corners, colors, desaturate, opacity)  96 bytes
//	binding 1  bitmap texture
//	binding 2  linear clamp-to-edge sampler
//	binding 3  project uniforms (view projection, coordinate system)  80 bytes
//	binding 4  picking uniforms                                      16 bytes
//
// Uniform buffers are rewritten only when their packed bytes change. The
// bind group is rebuilt when a different texture is bound.
//
// Draws land in the frame opened by BeginFrame; EndFrame copies it back
// and returns straight-alpha pixels.
package gpu
