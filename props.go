package geolayer

import (
	"math"
	"strings"
)

// Props are the declarative inputs of a BitmapLayer. Zero fields take the
// defaults listed per field; use DefaultProps to see them spelled out.
type Props struct {
	// ID identifies the layer in logs and error callbacks. Empty means a
	// random id is assigned by NewBitmapLayer.
	ID string

	// Image is the bitmap to display. Nil draws nothing.
	Image ImageSource

	// BitmapBounds places the image. Default Rect(0, 0, 1, 1).
	BitmapBounds BoundsSpec

	// Desaturate blends the image toward grayscale, 0 (none) to 1 (full).
	// Values outside [0, 1] are clamped.
	Desaturate float64

	// TransparentColor replaces transparent pixels. Default fully
	// transparent black, which leaves them transparent.
	TransparentColor Color

	// TintColor multiplies the image color channel-wise. Alpha is
	// ignored. The zero Color means no tint (white).
	TintColor Color

	// Opacity scales the image alpha. Nil means 1.
	Opacity *float64

	// Hidden skips drawing without releasing resources.
	Hidden bool

	// Pickable makes the layer render its picking color when the picking
	// pass is active.
	Pickable bool
}

// DefaultProps returns the props a layer uses when nothing is set.
func DefaultProps() Props {
	return Props{
		BitmapBounds:     Rect(0, 0, 1, 1),
		Desaturate:       0,
		TransparentColor: Color{0, 0, 0, 0},
		TintColor:        White,
		Opacity:          Float(1),
	}
}

// Float returns a pointer to v, for Props.Opacity.
func Float(v float64) *float64 { return &v }

// WithDefaults returns a copy of p with unset fields replaced by their
// defaults and out of range values clamped. Clamping is logged at warn
// level.
func (p Props) WithDefaults() Props {
	return p.withDefaults(true)
}

func (p Props) withDefaults(warn bool) Props {
	d := DefaultProps()
	if p.BitmapBounds.IsZero() {
		p.BitmapBounds = d.BitmapBounds
	}
	if p.TintColor == (Color{}) {
		p.TintColor = d.TintColor
	}
	if p.Opacity == nil {
		p.Opacity = d.Opacity
	}
	if c := clampUnit(p.Desaturate); c != p.Desaturate {
		if warn {
			Logger().Warn("geolayer: desaturate out of range, clamped",
				"layer", p.ID, "value", p.Desaturate, "clamped", c)
		}
		p.Desaturate = c
	}
	if o := clampUnit(*p.Opacity); o != *p.Opacity {
		if warn {
			Logger().Warn("geolayer: opacity out of range, clamped",
				"layer", p.ID, "value", *p.Opacity, "clamped", o)
		}
		p.Opacity = Float(o)
	}
	return p
}

// OpacityValue returns the effective opacity.
func (p Props) OpacityValue() float64 {
	if p.Opacity == nil {
		return 1
	}
	return *p.Opacity
}

// Validate reports malformed bounds. It does not check the image, which
// is typed and therefore always a supported reference.
func (p Props) Validate() error {
	b := p.BitmapBounds
	if b.IsZero() {
		b = DefaultProps().BitmapBounds
	}
	_, err := b.Resolve()
	return err
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}

// ChangeFlags describes which groups of props differ between two prop
// sets.
type ChangeFlags uint8

const (
	ChangeImage ChangeFlags = 1 << iota
	ChangeBounds
	ChangeAppearance
	ChangeOpacity
	ChangeVisibility
	ChangePickable

	ChangeNone ChangeFlags = 0
	ChangeAll              = ChangeImage | ChangeBounds | ChangeAppearance |
		ChangeOpacity | ChangeVisibility | ChangePickable
)

// Has reports whether every flag in f is set.
func (c ChangeFlags) Has(f ChangeFlags) bool { return c&f == f }

// Any reports whether at least one flag in f is set.
func (c ChangeFlags) Any(f ChangeFlags) bool { return c&f != 0 }

func (c ChangeFlags) String() string {
	if c == ChangeNone {
		return "none"
	}
	names := []struct {
		f    ChangeFlags
		name string
	}{
		{ChangeImage, "image"},
		{ChangeBounds, "bounds"},
		{ChangeAppearance, "appearance"},
		{ChangeOpacity, "opacity"},
		{ChangeVisibility, "visibility"},
		{ChangePickable, "pickable"},
	}
	var parts []string
	for _, n := range names {
		if c.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Diff compares two prop sets after defaulting both. Desaturate,
// TransparentColor and TintColor form one group: a change to any of them
// republishes all three.
func Diff(old, next Props) ChangeFlags {
	o, n := old.withDefaults(false), next.withDefaults(false)
	var c ChangeFlags
	if !sameImage(o.Image, n.Image) {
		c |= ChangeImage
	}
	if !o.BitmapBounds.Equal(n.BitmapBounds) {
		c |= ChangeBounds
	}
	if o.Desaturate != n.Desaturate || o.TransparentColor != n.TransparentColor || o.TintColor != n.TintColor {
		c |= ChangeAppearance
	}
	if o.OpacityValue() != n.OpacityValue() {
		c |= ChangeOpacity
	}
	if o.Hidden != n.Hidden {
		c |= ChangeVisibility
	}
	if o.Pickable != n.Pickable {
		c |= ChangePickable
	}
	return c
}
