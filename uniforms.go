package geolayer

import "maps"

// Uniform names published by BitmapLayer.
const (
	UniformLeftBottom       = "leftBottom"
	UniformRightBottom      = "rightBottom"
	UniformRightTop         = "rightTop"
	UniformLeftTop          = "leftTop"
	UniformDesaturate       = "desaturate"
	UniformTransparentColor = "transparentColor"
	UniformTintColor        = "tintColor"
	UniformOpacity          = "opacity"
	UniformBitmapTexture    = "bitmapTexture"
)

// Uniform names of the shared shader modules. Hosts provide these as
// global uniforms on every draw, usually through Viewport.Uniforms.
const (
	UniformViewProjection   = "project_uViewProjectionMatrix"
	UniformCoordinateSystem = "project_uCoordinateSystem"
	UniformCoordinateOrigin = "project_uCoordinateOrigin"
	UniformPickingActive    = "picking_uActive"
)

// Uniforms maps uniform names to values. Value types by convention:
//
//	float32       scalars
//	[2]float32    vec2
//	[3]float32    vec3
//	[4]float32    vec4
//	[16]float32   mat4, column-major
//	int32         integer enums
//	bool          flags
//	Texture       sampled textures
type Uniforms map[string]any

// Merge returns a new map holding u overlaid with each of others in order.
// Later maps win.
func (u Uniforms) Merge(others ...Uniforms) Uniforms {
	out := make(Uniforms, len(u))
	maps.Copy(out, u)
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

// Clone returns a shallow copy.
func (u Uniforms) Clone() Uniforms {
	return maps.Clone(u)
}

// Float returns a scalar uniform.
func (u Uniforms) Float(name string) (float32, bool) {
	v, ok := u[name].(float32)
	return v, ok
}

// Vec2 returns a vec2 uniform.
func (u Uniforms) Vec2(name string) ([2]float32, bool) {
	v, ok := u[name].([2]float32)
	return v, ok
}

// Vec3 returns a vec3 uniform.
func (u Uniforms) Vec3(name string) ([3]float32, bool) {
	v, ok := u[name].([3]float32)
	return v, ok
}

// Vec4 returns a vec4 uniform.
func (u Uniforms) Vec4(name string) ([4]float32, bool) {
	v, ok := u[name].([4]float32)
	return v, ok
}

// Mat4 returns a mat4 uniform.
func (u Uniforms) Mat4(name string) ([16]float32, bool) {
	v, ok := u[name].([16]float32)
	return v, ok
}

// Int returns an integer uniform.
func (u Uniforms) Int(name string) (int32, bool) {
	v, ok := u[name].(int32)
	return v, ok
}

// Bool returns a flag uniform.
func (u Uniforms) Bool(name string) bool {
	v, _ := u[name].(bool)
	return v
}

// Texture returns a texture uniform.
func (u Uniforms) Texture(name string) (Texture, bool) {
	v, ok := u[name].(Texture)
	return v, ok && v != nil
}

func boundsUniforms(c Corners) Uniforms {
	return Uniforms{
		UniformLeftBottom:  c[LeftBottom].Array(),
		UniformRightBottom: c[RightBottom].Array(),
		UniformRightTop:    c[RightTop].Array(),
		UniformLeftTop:     c[LeftTop].Array(),
	}
}

func appearanceUniforms(p Props) Uniforms {
	t := p.TintColor.Array()
	return Uniforms{
		UniformDesaturate:       float32(p.Desaturate),
		UniformTransparentColor: p.TransparentColor.Array(),
		UniformTintColor:        [3]float32{t[0], t[1], t[2]},
	}
}

func opacityUniforms(p Props) Uniforms {
	return Uniforms{UniformOpacity: float32(p.OpacityValue())}
}
