package geolayer

import (
	"context"
	"errors"
	"sync"
)

type fakeTexture struct {
	w, h      int
	destroyed int
}

func (t *fakeTexture) Width() int  { return t.w }
func (t *fakeTexture) Height() int { return t.h }
func (t *fakeTexture) Destroy()    { t.destroyed++ }

type fakeModel struct {
	desc      ModelDescriptor
	uniforms  Uniforms
	sets      []Uniforms
	renders   []Uniforms
	destroyed bool
}

func (m *fakeModel) SetUniforms(u Uniforms) {
	m.sets = append(m.sets, u.Clone())
	m.uniforms = m.uniforms.Merge(u)
}

func (m *fakeModel) Uniforms() Uniforms { return m.uniforms }

func (m *fakeModel) Render(u Uniforms) error {
	m.renders = append(m.renders, m.uniforms.Merge(u))
	return nil
}

func (m *fakeModel) Destroy() { m.destroyed = true }

// setNames returns the uniform names of the i-th SetUniforms call.
func (m *fakeModel) setNames(i int) map[string]bool {
	names := map[string]bool{}
	for k := range m.sets[i] {
		names[k] = true
	}
	return names
}

type fakeDevice struct {
	models     []*fakeModel
	textures   []*fakeTexture
	textureErr error
}

func (d *fakeDevice) NewModel(desc ModelDescriptor) (Model, error) {
	m := &fakeModel{desc: desc, uniforms: Uniforms{}}
	d.models = append(d.models, m)
	return m, nil
}

func (d *fakeDevice) NewTexture(b *Bitmap) (Texture, error) {
	if d.textureErr != nil {
		return nil, d.textureErr
	}
	t := &fakeTexture{w: b.Width(), h: b.Height()}
	d.textures = append(d.textures, t)
	return t, nil
}

// gatedLoader answers each URL once its gate is released. Unreleased
// requests return when their context ends.
type gatedLoader struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	fail  map[string]error
	calls []string
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{gates: map[string]chan struct{}{}, fail: map[string]error{}}
}

func (g *gatedLoader) gate(url string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[url]
	if !ok {
		ch = make(chan struct{})
		g.gates[url] = ch
	}
	return ch
}

func (g *gatedLoader) release(url string) { close(g.gate(url)) }

func (g *gatedLoader) LoadImage(ctx context.Context, url string) (*Bitmap, error) {
	g.mu.Lock()
	g.calls = append(g.calls, url)
	err := g.fail[url]
	g.mu.Unlock()

	select {
	case <-g.gate(url):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	// Encode the URL length in the size so tests can tell images apart.
	return NewBitmap(len(url), 1), nil
}

var errBoom = errors.New("boom")
