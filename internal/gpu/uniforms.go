package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/geolayer"
)

// Uniform block sizes, matching the WGSL struct layouts.
const (
	bitmapUniformSize  = 96
	projectUniformSize = 80
	pickingUniformSize = 16
)

func putFloat(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func putVec3(buf []byte, off int, v [3]float32) {
	for i, c := range v {
		putFloat(buf, off+4*i, c)
	}
}

// packBitmapUniforms lays out BitmapUniforms:
//
//	 0 left_bottom   12 desaturate
//	16 right_bottom  28 opacity
//	32 right_top
//	48 left_top
//	64 transparent_color
//	80 tint_color
func packBitmapUniforms(u geolayer.Uniforms) ([bitmapUniformSize]byte, error) {
	var buf [bitmapUniformSize]byte
	corners := [4]struct {
		name string
		off  int
	}{
		{geolayer.UniformLeftBottom, 0},
		{geolayer.UniformRightBottom, 16},
		{geolayer.UniformRightTop, 32},
		{geolayer.UniformLeftTop, 48},
	}
	for _, c := range corners {
		v, ok := u.Vec3(c.name)
		if !ok {
			return buf, fmt.Errorf("%w: %s", ErrMissingUniform, c.name)
		}
		putVec3(buf[:], c.off, v)
	}

	desaturate, _ := u.Float(geolayer.UniformDesaturate)
	putFloat(buf[:], 12, desaturate)

	opacity, ok := u.Float(geolayer.UniformOpacity)
	if !ok {
		opacity = 1
	}
	putFloat(buf[:], 28, opacity)

	transparent, _ := u.Vec4(geolayer.UniformTransparentColor)
	for i, c := range transparent {
		putFloat(buf[:], 64+4*i, c)
	}

	tint, ok := u.Vec3(geolayer.UniformTintColor)
	if !ok {
		tint = [3]float32{255, 255, 255}
	}
	putVec3(buf[:], 80, tint)
	return buf, nil
}

// packProjectUniforms lays out ProjectUniforms: the column-major view
// projection matrix followed by the coordinate system. A missing matrix
// means identity.
func packProjectUniforms(u geolayer.Uniforms) [projectUniformSize]byte {
	var buf [projectUniformSize]byte
	m, ok := u.Mat4(geolayer.UniformViewProjection)
	if !ok {
		m = [16]float32{0: 1, 5: 1, 10: 1, 15: 1}
	}
	for i, v := range m {
		putFloat(buf[:], 4*i, v)
	}
	cs, _ := u.Int(geolayer.UniformCoordinateSystem)
	binary.LittleEndian.PutUint32(buf[64:], uint32(cs)) //nolint:gosec // bit pattern of an i32
	return buf
}

func packPickingUniforms(u geolayer.Uniforms) [pickingUniformSize]byte {
	var buf [pickingUniformSize]byte
	if u.Bool(geolayer.UniformPickingActive) {
		binary.LittleEndian.PutUint32(buf[:], 1)
	}
	return buf
}
