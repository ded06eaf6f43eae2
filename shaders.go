package geolayer

import _ "embed"

//go:embed shaders/bitmap_layer_vs.wgsl
var bitmapVertexShader string

//go:embed shaders/bitmap_layer_fs.wgsl
var bitmapFragmentShader string

// BitmapShaderName identifies the bitmap layer program. Rendering
// libraries without a WGSL compiler dispatch on this name.
const BitmapShaderName = "bitmap-layer"

// Shader module names used by the bitmap layer.
const (
	ModuleProject = "project"
	ModulePicking = "picking"
)

// BitmapShaders returns the bitmap layer program. The vertex source
// declares the bindings and the stage interface shared with the fragment
// source, so the fragment source is only valid appended after it.
func BitmapShaders() ShaderSource {
	return ShaderSource{
		Name:    BitmapShaderName,
		VS:      bitmapVertexShader,
		FS:      bitmapFragmentShader,
		Modules: []string{ModuleProject, ModulePicking},
	}
}
