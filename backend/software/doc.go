// Package software is a CPU implementation of geolayer.Device.
//
// It runs the bitmap layer program without a GPU: the vertex stage places
// the six quad vertices by corner interpolation and projects them with the
// view projection uniform, a half-space rasterizer covers the two
// triangles using the top-left fill rule, and the fragment stage samples
// the texture bilinearly before applying desaturate, tint, the transparent
// color and opacity. Frames are kept premultiplied and blended source-over.
//
// Import the package for its side effect to register the backend:
//
//	import _ "github.com/gogpu/geolayer/backend/software"
//
// Only programs named geolayer.BitmapShaderName can be compiled; any other
// program fails NewModel with ErrUnsupportedProgram.
package software
