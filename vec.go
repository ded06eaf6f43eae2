package geolayer

import "math"

// Vec3 is a point in layer coordinates. For geographic layers X is the
// longitude, Y the latitude and Z the altitude in meters.
type Vec3 struct {
	X, Y, Z float64
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by s.
func (v Vec3) Mul(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Lerp interpolates linearly between v (t=0) and w (t=1).
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
	}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Array returns the components as a float32 triple, the layout used by
// vec3 uniforms.
func (v Vec3) Array() [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Corner indexes into Corners.
const (
	LeftBottom = iota
	RightBottom
	RightTop
	LeftTop
)

// Corners holds the four resolved corners of a bitmap quad in the order
// bottom-left, bottom-right, top-right, top-left.
type Corners [4]Vec3

// LeftBottom returns the bottom-left corner.
func (c Corners) LeftBottom() Vec3 { return c[LeftBottom] }

// RightBottom returns the bottom-right corner.
func (c Corners) RightBottom() Vec3 { return c[RightBottom] }

// RightTop returns the top-right corner.
func (c Corners) RightTop() Vec3 { return c[RightTop] }

// LeftTop returns the top-left corner.
func (c Corners) LeftTop() Vec3 { return c[LeftTop] }

// Interpolate maps a texture coordinate onto the quad. u runs from the
// left edge to the right edge, v from the bottom edge to the top edge:
//
//	p0 = lerp(leftBottom, rightBottom, u)
//	p1 = lerp(leftTop, rightTop, u)
//	position = lerp(p0, p1, v)
//
// This is the same computation the vertex stage performs on the GPU.
func (c Corners) Interpolate(u, v float64) Vec3 {
	p0 := c[LeftBottom].Lerp(c[RightBottom], u)
	p1 := c[LeftTop].Lerp(c[RightTop], u)
	return p0.Lerp(p1, v)
}
