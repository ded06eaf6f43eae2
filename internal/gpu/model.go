package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/geolayer"
)

// uniformBuffer is a uniform buffer plus the bytes last written to it.
type uniformBuffer struct {
	buf  hal.Buffer
	last []byte
}

// write uploads data unless it equals the previous upload. It reports
// whether a write was issued.
func (u *uniformBuffer) write(queue hal.Queue, data []byte) bool {
	if u.last != nil && bytes.Equal(u.last, data) {
		return false
	}
	queue.WriteBuffer(u.buf, 0, data)
	u.last = append(u.last[:0], data...)
	return true
}

// Model is the bitmap program bound to per-model buffers.
type Model struct {
	dev *Device
	id  string

	vertBuf   hal.Buffer
	vertCount uint32

	bitmap  uniformBuffer
	project uniformBuffer
	picking uniformBuffer

	bindGroup hal.BindGroup
	boundTex  *Texture

	uniforms  geolayer.Uniforms
	writes    int
	rebinds   int
	draws     int
	destroyed bool
}

var _ geolayer.Model = (*Model)(nil)

// SetUniforms merges u into the persistent uniforms. Nothing is uploaded
// until the next Render.
func (m *Model) SetUniforms(u geolayer.Uniforms) {
	m.uniforms = m.uniforms.Merge(u)
}

// Uniforms returns a copy of the persistent uniforms.
func (m *Model) Uniforms() geolayer.Uniforms {
	return m.uniforms.Clone()
}

// Stats returns the number of uniform buffer writes, bind group rebuilds
// and draws issued so far.
func (m *Model) Stats() (writes, rebinds, draws int) {
	return m.writes, m.rebinds, m.draws
}

// Render uploads the uniforms that changed and draws the quad into the
// active frame.
func (m *Model) Render(u geolayer.Uniforms) error {
	if m.destroyed {
		return ErrModelDestroyed
	}
	f := m.dev.activeFrame()
	if f == nil {
		return ErrNoActiveFrame
	}
	all := m.uniforms.Merge(u)

	tex, err := m.dev.texture(all)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.id, err)
	}
	bitmap, err := packBitmapUniforms(all)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.id, err)
	}
	project := packProjectUniforms(all)
	picking := packPickingUniforms(all)

	q := m.dev.queue
	for _, w := range []bool{
		m.bitmap.write(q, bitmap[:]),
		m.project.write(q, project[:]),
		m.picking.write(q, picking[:]),
	} {
		if w {
			m.writes++
		}
	}

	if tex != m.boundTex || m.bindGroup == nil {
		if err := m.rebind(tex); err != nil {
			return fmt.Errorf("model %s: %w", m.id, err)
		}
	}

	p := m.dev.pipeline
	err = m.dev.pass(f, "bitmap_layer_draw", false, func(rp hal.RenderPassEncoder) {
		rp.SetPipeline(p.pipeline)
		rp.SetBindGroup(0, m.bindGroup, nil)
		rp.SetVertexBuffer(0, m.vertBuf, 0)
		rp.Draw(m.vertCount, 1, 0, 0)
	})
	if err != nil {
		return fmt.Errorf("model %s: %w", m.id, err)
	}
	m.draws++
	return nil
}

func (m *Model) rebind(tex *Texture) error {
	p := m.dev.pipeline
	bg, err := m.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "bitmap_layer_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: m.bitmap.buf.NativeHandle(), Offset: 0, Size: bitmapUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: tex.view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
			{Binding: 3, Resource: gputypes.BufferBinding{
				Buffer: m.project.buf.NativeHandle(), Offset: 0, Size: projectUniformSize,
			}},
			{Binding: 4, Resource: gputypes.BufferBinding{
				Buffer: m.picking.buf.NativeHandle(), Offset: 0, Size: pickingUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	if m.bindGroup != nil {
		m.dev.device.DestroyBindGroup(m.bindGroup)
	}
	m.bindGroup = bg
	m.boundTex = tex
	m.rebinds++
	return nil
}

// Destroy releases the model buffers. Render fails afterwards.
func (m *Model) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.dev.forgetModel(m)
	m.release()
}

func (m *Model) release() {
	d := m.dev.device
	if m.bindGroup != nil {
		d.DestroyBindGroup(m.bindGroup)
		m.bindGroup = nil
	}
	for _, b := range []*hal.Buffer{&m.picking.buf, &m.project.buf, &m.bitmap.buf, &m.vertBuf} {
		if *b != nil {
			d.DestroyBuffer(*b)
			*b = nil
		}
	}
	m.boundTex = nil
	m.uniforms = nil
}

func (d *Device) createModel(desc geolayer.ModelDescriptor, texCoords []float32) (*Model, error) {
	m := &Model{
		dev:       d,
		id:        desc.ID,
		vertCount: uint32(desc.Geometry.VertexCount), //nolint:gosec // validated by NewModel
		uniforms:  geolayer.Uniforms{},
	}

	vertData := make([]byte, len(texCoords)*4)
	for i, v := range texCoords {
		binary.LittleEndian.PutUint32(vertData[i*4:], math.Float32bits(v))
	}
	var err error
	if m.vertBuf, err = d.createAndUploadBuffer("bitmap_layer_verts", vertData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		m.release()
		return nil, err
	}

	uniforms := []struct {
		label string
		size  uint64
		dst   *hal.Buffer
	}{
		{"bitmap_layer_uniform", bitmapUniformSize, &m.bitmap.buf},
		{"bitmap_layer_project", projectUniformSize, &m.project.buf},
		{"bitmap_layer_picking", pickingUniformSize, &m.picking.buf},
	}
	for _, u := range uniforms {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: u.label,
			Size:  u.size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			m.release()
			return nil, fmt.Errorf("create %s: %w", u.label, err)
		}
		*u.dst = buf
	}
	return m, nil
}

func (d *Device) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
