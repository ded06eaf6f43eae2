package geolayer

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestResolveRect(t *testing.T) {
	got, err := Rect(2, 4, 16, 8).Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := Corners{{2, 4, 0}, {16, 4, 0}, {16, 8, 0}, {2, 8, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("corners mismatch (-want +got):\n%s", diff)
	}
}

func TestResolvePoints(t *testing.T) {
	tests := []struct {
		name   string
		bounds BoundsSpec
		want   Corners
	}{
		{
			name:   "3d points kept as given",
			bounds: Quad([]float64{2, 4, 1}, []float64{16, 4, 1}, []float64{16, 8, 1}, []float64{2, 8, 1}),
			want:   Corners{{2, 4, 1}, {16, 4, 1}, {16, 8, 1}, {2, 8, 1}},
		},
		{
			name:   "2d points get z=0",
			bounds: Quad([]float64{0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1}),
			want:   Corners{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		},
		{
			name:   "mixed 2d and 3d",
			bounds: Quad([]float64{0, 0}, []float64{10, 0, 5}, []float64{12, 9}, []float64{-1, 10, 2}),
			want:   Corners{{0, 0, 0}, {10, 0, 5}, {12, 9, 0}, {-1, 10, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.bounds.Resolve()
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("corners mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveMalformed(t *testing.T) {
	tests := []struct {
		name   string
		bounds BoundsSpec
	}{
		{"zero value", BoundsSpec{}},
		{"three points", Quad([]float64{0, 0}, []float64{1, 0}, []float64{1, 1})},
		{"five points", Quad([]float64{0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1}, []float64{0, 0})},
		{"one component point", Quad([]float64{0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1})},
		{"four component point", Quad([]float64{0, 0, 0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1})},
		{"nan rect", Rect(0, math.NaN(), 1, 1)},
		{"inf rect", Rect(0, 0, math.Inf(1), 1)},
		{"nan point", Quad([]float64{0, 0}, []float64{math.NaN(), 0}, []float64{1, 1}, []float64{0, 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.bounds.Resolve(); !errors.Is(err, ErrMalformedBounds) {
				t.Errorf("Resolve() err = %v, want ErrMalformedBounds", err)
			}
		})
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Corners
		wantErr bool
	}{
		{
			name: "rect of ints",
			in:   []any{2, 4, 16, 8},
			want: Corners{{2, 4, 0}, {16, 4, 0}, {16, 8, 0}, {2, 8, 0}},
		},
		{
			name: "float slice",
			in:   []float64{-1, -2, 3, 4},
			want: Corners{{-1, -2, 0}, {3, -2, 0}, {3, 4, 0}, {-1, 4, 0}},
		},
		{
			name: "points",
			in:   []any{[]any{2, 4, 1}, []any{16.5, 4}, []any{16, 8, 1}, []any{2, 8}},
			want: Corners{{2, 4, 1}, {16.5, 4, 0}, {16, 8, 1}, {2, 8, 0}},
		},
		{name: "rect too short", in: []any{1, 2, 3}, wantErr: true},
		{name: "rect with string", in: []any{1, "2", 3, 4}, wantErr: true},
		{name: "non numeric point", in: []any{[]any{"a", 1}, []any{1, 1}, []any{1, 1}, []any{1, 1}}, wantErr: true},
		{name: "empty", in: []any{}, wantErr: true},
		{name: "wrong type", in: "0,0,1,1", wantErr: true},
		// A non-finite first element selects the point form, which then fails.
		{name: "nan first", in: []any{math.NaN(), 0, 1, 1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBounds(tt.in)
			if err == nil {
				_, err = b.Resolve()
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedBounds) {
					t.Errorf("err = %v, want ErrMalformedBounds", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, _ := b.Resolve()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("corners mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoundsEqual(t *testing.T) {
	a := Rect(0, 0, 1, 1)
	if !a.Equal(Rect(0, 0, 1, 1)) {
		t.Error("identical rects should be equal")
	}
	if a.Equal(Quad([]float64{0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1})) {
		t.Error("rect and quad with the same corners are different specs")
	}
	q := Quad([]float64{0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1})
	if !q.Equal(Quad([]float64{0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1})) {
		t.Error("identical quads should be equal")
	}
	if q.Equal(Quad([]float64{0, 0, 0}, []float64{1, 0}, []float64{1, 1}, []float64{0, 1})) {
		t.Error("2d and 3d point should differ")
	}
}

func TestQuadCopiesPoints(t *testing.T) {
	p := []float64{1, 2}
	b := Quad(p, []float64{3, 2}, []float64{3, 4}, []float64{1, 4})
	p[0] = 99
	c, err := b.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if c.LeftBottom().X != 1 {
		t.Errorf("Quad should copy its input, got X=%v", c.LeftBottom().X)
	}
}

func TestBoundsUnmarshalYAML(t *testing.T) {
	var doc struct {
		A BoundsSpec `yaml:"a"`
		B BoundsSpec `yaml:"b"`
	}
	src := "a: [2, 4, 16, 8]\nb: [[2, 4, 1], [16, 4, 1], [16, 8], [2, 8]]\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !doc.A.Equal(Rect(2, 4, 16, 8)) {
		t.Errorf("a = %v", doc.A)
	}
	got, _ := doc.B.Resolve()
	want := Corners{{2, 4, 1}, {16, 4, 1}, {16, 8, 0}, {2, 8, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("b mismatch (-want +got):\n%s", diff)
	}

	var bad struct {
		A BoundsSpec `yaml:"a"`
	}
	if err := yaml.Unmarshal([]byte("a: [1, 2, 3]\n"), &bad); !errors.Is(err, ErrMalformedBounds) {
		t.Errorf("err = %v, want ErrMalformedBounds", err)
	}
}

func TestCornersInterpolate(t *testing.T) {
	c := Corners{{0, 0, 0}, {10, 0, 0}, {12, 8, 4}, {-2, 8, 0}}
	tests := []struct {
		u, v float64
		want Vec3
	}{
		{0, 0, c[LeftBottom]},
		{1, 0, c[RightBottom]},
		{1, 1, c[RightTop]},
		{0, 1, c[LeftTop]},
		{0.5, 0, Vec3{5, 0, 0}},
		{0.5, 1, Vec3{5, 8, 2}},
		{0.5, 0.5, Vec3{5, 4, 1}},
	}
	for _, tt := range tests {
		if got := c.Interpolate(tt.u, tt.v); got != tt.want {
			t.Errorf("Interpolate(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
		}
	}
}
