package geolayer

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// BoundsSpec describes where a bitmap is placed. It is either a rectangle
// (left, bottom, right, top) lying in the z = 0 plane, or four corner
// points ordered bottom-left, bottom-right, top-right, top-left. Points may
// have two or three components; missing z defaults to 0.
//
// The zero value is empty and fails to resolve.
type BoundsSpec struct {
	rect   [4]float64
	points [][]float64
	isRect bool
}

// Rect returns a rectangular bounds spec.
func Rect(left, bottom, right, top float64) BoundsSpec {
	return BoundsSpec{rect: [4]float64{left, bottom, right, top}, isRect: true}
}

// Quad returns a bounds spec from four corner points, ordered bottom-left,
// bottom-right, top-right, top-left. The points are copied. Validation is
// deferred to Resolve.
func Quad(points ...[]float64) BoundsSpec {
	cp := make([][]float64, len(points))
	for i, p := range points {
		cp[i] = slices.Clone(p)
	}
	return BoundsSpec{points: cp}
}

// QuadCorners returns a bounds spec from already resolved corners.
func QuadCorners(c Corners) BoundsSpec {
	pts := make([][]float64, 4)
	for i, p := range c {
		pts[i] = []float64{p.X, p.Y, p.Z}
	}
	return BoundsSpec{points: pts}
}

// ParseBounds converts a dynamically typed value, as produced by JSON or
// YAML decoders, into a BoundsSpec. A list whose first element is a finite
// number is a rectangle and must hold exactly four numbers. Otherwise the
// value must be a list of four numeric points.
func ParseBounds(v any) (BoundsSpec, error) {
	switch b := v.(type) {
	case BoundsSpec:
		return b, nil
	case [4]float64:
		return Rect(b[0], b[1], b[2], b[3]), nil
	case [][]float64:
		return Quad(b...), nil
	case []float64:
		items := make([]any, len(b))
		for i, f := range b {
			items[i] = f
		}
		return parseBoundsList(items)
	case []any:
		return parseBoundsList(b)
	default:
		return BoundsSpec{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedBounds, v)
	}
}

func parseBoundsList(items []any) (BoundsSpec, error) {
	if len(items) == 0 {
		return BoundsSpec{}, fmt.Errorf("%w: empty list", ErrMalformedBounds)
	}
	if first, ok := toFloat(items[0]); ok && isFinite(first) {
		if len(items) != 4 {
			return BoundsSpec{}, fmt.Errorf("%w: rectangle needs 4 numbers, got %d", ErrMalformedBounds, len(items))
		}
		var r [4]float64
		for i, it := range items {
			f, ok := toFloat(it)
			if !ok {
				return BoundsSpec{}, fmt.Errorf("%w: rectangle element %d is %T", ErrMalformedBounds, i, it)
			}
			r[i] = f
		}
		return Rect(r[0], r[1], r[2], r[3]), nil
	}

	points := make([][]float64, len(items))
	for i, it := range items {
		var raw []any
		switch p := it.(type) {
		case []any:
			raw = p
		case []float64:
			points[i] = slices.Clone(p)
			continue
		default:
			return BoundsSpec{}, fmt.Errorf("%w: point %d is %T", ErrMalformedBounds, i, it)
		}
		pt := make([]float64, len(raw))
		for j, c := range raw {
			f, ok := toFloat(c)
			if !ok {
				return BoundsSpec{}, fmt.Errorf("%w: point %d component %d is %T", ErrMalformedBounds, i, j, c)
			}
			pt[j] = f
		}
		points[i] = pt
	}
	return BoundsSpec{points: points}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// IsRect reports whether b was given as a rectangle.
func (b BoundsSpec) IsRect() bool { return b.isRect }

// IsZero reports whether b is the empty bounds spec.
func (b BoundsSpec) IsZero() bool { return !b.isRect && b.points == nil }

// Resolve computes the four corners of b.
func (b BoundsSpec) Resolve() (Corners, error) {
	if b.isRect {
		for i, f := range b.rect {
			if !isFinite(f) {
				return Corners{}, fmt.Errorf("%w: rectangle element %d is not finite", ErrMalformedBounds, i)
			}
		}
		l, bot, r, t := b.rect[0], b.rect[1], b.rect[2], b.rect[3]
		return Corners{
			{X: l, Y: bot},
			{X: r, Y: bot},
			{X: r, Y: t},
			{X: l, Y: t},
		}, nil
	}

	if len(b.points) != 4 {
		return Corners{}, fmt.Errorf("%w: need 4 corner points, got %d", ErrMalformedBounds, len(b.points))
	}
	var c Corners
	for i, p := range b.points {
		switch len(p) {
		case 2:
			c[i] = Vec3{X: p[0], Y: p[1]}
		case 3:
			c[i] = Vec3{X: p[0], Y: p[1], Z: p[2]}
		default:
			return Corners{}, fmt.Errorf("%w: point %d has %d components", ErrMalformedBounds, i, len(p))
		}
		if !c[i].IsFinite() {
			return Corners{}, fmt.Errorf("%w: point %d is not finite", ErrMalformedBounds, i)
		}
	}
	return c, nil
}

// Equal reports whether b and o describe the same bounds in the same
// shape.
func (b BoundsSpec) Equal(o BoundsSpec) bool {
	if b.isRect != o.isRect {
		return false
	}
	if b.isRect {
		return b.rect == o.rect
	}
	return slices.EqualFunc(b.points, o.points, func(p, q []float64) bool {
		return slices.Equal(p, q)
	})
}

func (b BoundsSpec) String() string {
	if b.isRect {
		return fmt.Sprintf("[%g, %g, %g, %g]", b.rect[0], b.rect[1], b.rect[2], b.rect[3])
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range b.points {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		for j, f := range p {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", f)
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// UnmarshalYAML accepts both bounds shapes:
//
//	bounds: [-122.5, 37.7, -122.3, 37.8]
//	bounds: [[0, 0], [10, 0, 5], [10, 10], [0, 10]]
func (b *BoundsSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw []any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrMalformedBounds, node.Line, err)
	}
	parsed, err := ParseBounds(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if _, err := parsed.Resolve(); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = parsed
	return nil
}
