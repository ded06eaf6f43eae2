package software

import (
	"fmt"

	"github.com/gogpu/geolayer"
)

// Model runs the bitmap program on the CPU.
type Model struct {
	dev       *Device
	id        string
	topology  geolayer.Topology
	count     int
	texCoords []float32
	uniforms  geolayer.Uniforms
	destroyed bool
	draws     int
}

var _ geolayer.Model = (*Model)(nil)

// SetUniforms merges u into the persistent uniforms.
func (m *Model) SetUniforms(u geolayer.Uniforms) {
	m.uniforms = m.uniforms.Merge(u)
}

// Uniforms returns a copy of the persistent uniforms.
func (m *Model) Uniforms() geolayer.Uniforms {
	return m.uniforms.Clone()
}

// Draws returns the number of successful Render calls.
func (m *Model) Draws() int { return m.draws }

// Destroy releases the model. Render fails afterwards.
func (m *Model) Destroy() {
	m.destroyed = true
	m.uniforms = nil
}

// Render draws into the frame bound by RenderFrame.
func (m *Model) Render(u geolayer.Uniforms) error {
	if m.destroyed {
		return ErrModelDestroyed
	}
	frame := m.dev.currentTarget()
	if frame == nil {
		return ErrNoTarget
	}
	all := m.uniforms.Merge(u)

	corners, err := cornersFrom(all)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.id, err)
	}
	tex, err := m.dev.texture(all)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.id, err)
	}

	verts := m.vertexStage(corners, all, frame)
	frag := fragmentUniformsFrom(all)
	shade := func(x, y int, tc [2]float64) {
		texel := tex.Sample(float32(tc[0]), float32(1-tc[1]))
		frame.blend(x, y, frag.shade(texel))
	}
	m.assemble(verts, func(a, b, c vertex) {
		rasterize(a, b, c, frame.width, frame.height, shade)
	})
	m.draws++
	return nil
}

// vertexStage places every vertex by corner interpolation and projects it
// to pixel space.
func (m *Model) vertexStage(c geolayer.Corners, u geolayer.Uniforms, f *Frame) []vertex {
	vp, ok := u.Mat4(geolayer.UniformViewProjection)
	if !ok {
		vp = [16]float32{0: 1, 5: 1, 10: 1, 15: 1}
	}
	cs, _ := u.Int(geolayer.UniformCoordinateSystem)

	verts := make([]vertex, m.count)
	for i := range verts {
		s := float64(m.texCoords[2*i])
		t := float64(m.texCoords[2*i+1])
		p := c.Interpolate(s, t)
		clip := geolayer.ProjectPosition(p, vp, geolayer.CoordinateSystem(cs))
		w := clip[3]
		if w == 0 {
			w = 1e-12
		}
		verts[i] = vertex{
			x:    (clip[0]/w + 1) / 2 * float64(f.width),
			y:    (1 - clip[1]/w) / 2 * float64(f.height),
			invW: 1 / w,
			tc:   [2]float64{s, t},
		}
	}
	return verts
}

func (m *Model) assemble(verts []vertex, tri func(a, b, c vertex)) {
	switch m.topology {
	case geolayer.TriangleStrip:
		for i := 0; i+2 < len(verts); i++ {
			tri(verts[i], verts[i+1], verts[i+2])
		}
	default:
		for i := 0; i+2 < len(verts); i += 3 {
			tri(verts[i], verts[i+1], verts[i+2])
		}
	}
}

func cornersFrom(u geolayer.Uniforms) (geolayer.Corners, error) {
	names := [4]string{
		geolayer.LeftBottom:  geolayer.UniformLeftBottom,
		geolayer.RightBottom: geolayer.UniformRightBottom,
		geolayer.RightTop:    geolayer.UniformRightTop,
		geolayer.LeftTop:     geolayer.UniformLeftTop,
	}
	var c geolayer.Corners
	for i, name := range names {
		v, ok := u.Vec3(name)
		if !ok {
			return c, fmt.Errorf("%w: %s", ErrMissingUniform, name)
		}
		c[i] = geolayer.V3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return c, nil
}
