package geolayer

import "math"

// CoordinateSystem selects how layer positions are interpreted by the
// project shader module.
type CoordinateSystem int32

const (
	// CoordinateCartesian positions are world units, used as-is.
	CoordinateCartesian CoordinateSystem = 0
	// CoordinateLngLat positions are degrees, projected with Web Mercator.
	CoordinateLngLat CoordinateSystem = 1
)

// WorldSize is the Web Mercator world width in world units at zoom 0.
const WorldSize = 512

// Viewport is a top-down map view. For CoordinateLngLat the center is
// (Longitude, Latitude) in degrees; for CoordinateCartesian the same
// fields hold the center x and y in world units.
type Viewport struct {
	Width, Height    int
	Longitude        float64
	Latitude         float64
	Zoom             float64
	CoordinateSystem CoordinateSystem
}

// LngLatToWorld projects a geographic position to Web Mercator world
// units. Y grows northward.
func LngLatToWorld(lng, lat float64) (x, y float64) {
	lambda := lng * math.Pi / 180
	phi := lat * math.Pi / 180
	x = WorldSize * (lambda + math.Pi) / (2 * math.Pi)
	y = WorldSize * (math.Pi + math.Log(math.Tan(math.Pi/4+phi/2))) / (2 * math.Pi)
	return x, y
}

func (vp Viewport) center() (x, y float64) {
	if vp.CoordinateSystem == CoordinateLngLat {
		return LngLatToWorld(vp.Longitude, vp.Latitude)
	}
	return vp.Longitude, vp.Latitude
}

// ViewProjectionMatrix maps world units to clip space. The matrix is
// column-major and orthographic; depth is flattened to 0.
func (vp Viewport) ViewProjectionMatrix() [16]float32 {
	w, h := float64(vp.Width), float64(vp.Height)
	if w <= 0 || h <= 0 {
		return [16]float32{0: 1, 5: 1, 15: 1}
	}
	scale := math.Exp2(vp.Zoom)
	sx := 2 * scale / w
	sy := 2 * scale / h
	cx, cy := vp.center()
	return [16]float32{
		0:  float32(sx),
		5:  float32(sy),
		12: float32(-cx * sx),
		13: float32(-cy * sy),
		15: 1,
	}
}

// Uniforms returns the global uniforms the project module expects.
func (vp Viewport) Uniforms() Uniforms {
	return Uniforms{
		UniformViewProjection:   vp.ViewProjectionMatrix(),
		UniformCoordinateSystem: int32(vp.CoordinateSystem),
	}
}

// ProjectToClip projects a layer position to homogeneous clip space.
func (vp Viewport) ProjectToClip(p Vec3) [4]float64 {
	return ProjectPosition(p, vp.ViewProjectionMatrix(), vp.CoordinateSystem)
}

// ProjectPosition is the CPU form of project_position_to_clipspace: the
// position is converted to world units according to cs and multiplied by
// the column-major view projection matrix m. Altitude is ignored, like
// the bitmap vertex stage does.
func ProjectPosition(p Vec3, m [16]float32, cs CoordinateSystem) [4]float64 {
	x, y := p.X, p.Y
	if cs == CoordinateLngLat {
		x, y = LngLatToWorld(x, y)
	}
	var out [4]float64
	for row := range 4 {
		out[row] = float64(m[row])*x + float64(m[4+row])*y + float64(m[12+row])
	}
	return out
}
