package software

import "github.com/gogpu/geolayer"

// pickingColor is the fixed color the bitmap program writes during the
// picking pass, in the 0-255 range.
var pickingColor = [3]float32{0, 0, 1}

// fragmentUniforms are the values the fragment stage reads. Colors stay in
// the 0-255 range the layer publishes them in.
type fragmentUniforms struct {
	desaturate  float32
	opacity     float32
	transparent [4]float32
	tint        [3]float32
	picking     bool
}

func fragmentUniformsFrom(u geolayer.Uniforms) fragmentUniforms {
	f := fragmentUniforms{
		opacity: 1,
		tint:    [3]float32{255, 255, 255},
		picking: u.Bool(geolayer.UniformPickingActive),
	}
	if v, ok := u.Float(geolayer.UniformDesaturate); ok {
		f.desaturate = v
	}
	if v, ok := u.Float(geolayer.UniformOpacity); ok {
		f.opacity = v
	}
	if v, ok := u.Vec4(geolayer.UniformTransparentColor); ok {
		f.transparent = v
	}
	if v, ok := u.Vec3(geolayer.UniformTintColor); ok {
		f.tint = v
	}
	return f
}

// shade computes the premultiplied output for a texel.
func (f *fragmentUniforms) shade(texel [4]float32) [4]float32 {
	if f.picking {
		return [4]float32{pickingColor[0] / 255, pickingColor[1] / 255, pickingColor[2] / 255, 1}
	}

	// desaturate
	lum := (texel[0] + texel[1] + texel[2]) / 3
	var rgb [3]float32
	for i := range rgb {
		rgb[i] = texel[i] + (lum-texel[i])*f.desaturate
		// tint
		rgb[i] *= f.tint[i] / 255
	}

	// blend toward the transparent color by alpha
	alpha := texel[3] * f.opacity
	src := [4]float32{rgb[0], rgb[1], rgb[2], 1}
	var out [4]float32
	for i := range out {
		t := f.transparent[i] / 255
		out[i] = t + (src[i]-t)*alpha
	}
	return [4]float32{out[0] * out[3], out[1] * out[3], out[2] * out[3], out[3]}
}
