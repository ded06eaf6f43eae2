package geolayer

import (
	"fmt"
	"image/color"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is an 8-bit per channel, non-premultiplied color. Layer props use
// the 0-255 range; shaders receive the values divided by 255.
type Color struct {
	R, G, B, A uint8
}

// Common colors.
var (
	White       = Color{255, 255, 255, 255}
	Black       = Color{0, 0, 0, 255}
	Transparent = Color{}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color with an explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// FromColor converts a standard color.Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Normalized returns the channels scaled to [0, 1].
func (c Color) Normalized() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// Array returns the raw channels as floats in the 0-255 range, the form
// published in layer uniforms.
func (c Color) Array() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// Hex parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with or without a
// leading '#'.
func Hex(hex string) (Color, error) {
	s := strings.TrimPrefix(hex, "#")
	var v [4]uint8
	v[3] = 255

	switch len(s) {
	case 3, 4:
		for i := range len(s) {
			d, ok := hexDigit(s[i])
			if !ok {
				return Color{}, fmt.Errorf("geolayer: invalid hex color %q", hex)
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(s); i += 2 {
			hi, ok1 := hexDigit(s[i])
			lo, ok2 := hexDigit(s[i+1])
			if !ok1 || !ok2 {
				return Color{}, fmt.Errorf("geolayer: invalid hex color %q", hex)
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return Color{}, fmt.Errorf("geolayer: invalid hex color %q", hex)
	}
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseColor converts a hex string or a list of 3 or 4 channel values in
// the 0-255 range. Three-element lists are opaque.
func ParseColor(v any) (Color, error) {
	switch c := v.(type) {
	case Color:
		return c, nil
	case string:
		return Hex(c)
	case []any:
		if len(c) != 3 && len(c) != 4 {
			return Color{}, fmt.Errorf("geolayer: color needs 3 or 4 channels, got %d", len(c))
		}
		ch := [4]uint8{0, 0, 0, 255}
		for i, it := range c {
			f, ok := toFloat(it)
			if !ok || f < 0 || f > 255 {
				return Color{}, fmt.Errorf("geolayer: color channel %d out of range: %v", i, it)
			}
			ch[i] = uint8(f + 0.5)
		}
		return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
	default:
		return Color{}, fmt.Errorf("geolayer: unsupported color type %T", v)
	}
}

// UnmarshalYAML accepts "#rrggbb" strings and [r, g, b(, a)] lists.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseColor(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
