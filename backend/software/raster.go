package software

import "math"

// vertex is a projected vertex in pixel space. invW is 1/w from clip space
// and tc the texture coordinate, used for perspective-correct
// interpolation.
type vertex struct {
	x, y float64
	invW float64
	tc   [2]float64
}

// edge is the signed area of (a, b, p), positive when p lies on the
// interior side of a clockwise (screen space, y down) triangle.
func edge(a, b vertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// isTopLeft reports whether a->b is a top or left edge of a clockwise
// triangle. Pixels centered exactly on such edges are covered; pixels on
// the other edges are not, so adjacent triangles never draw a pixel
// twice.
func isTopLeft(a, b vertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func covered(w float64, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}

// rasterize calls fn for every pixel center covered by the triangle abc
// inside a width x height target, with the interpolated texture
// coordinate. Both windings are drawn.
func rasterize(a, b, c vertex, width, height int, fn func(x, y int, tc [2]float64)) {
	area := edge(a, b, c.x, c.y)
	if area == 0 || math.IsNaN(area) {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := max(0, int(math.Floor(min(a.x, b.x, c.x))))
	maxX := min(width-1, int(math.Ceil(max(a.x, b.x, c.x))))
	minY := max(0, int(math.Floor(min(a.y, b.y, c.y))))
	maxY := min(height-1, int(math.Ceil(max(a.y, b.y, c.y))))

	tlA := isTopLeft(b, c)
	tlB := isTopLeft(c, a)
	tlC := isTopLeft(a, b)

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, c, px, py)
			w1 := edge(c, a, px, py)
			w2 := edge(a, b, px, py)
			if !covered(w0, tlA) || !covered(w1, tlB) || !covered(w2, tlC) {
				continue
			}
			l0, l1, l2 := w0/area, w1/area, w2/area
			q0, q1, q2 := l0*a.invW, l1*b.invW, l2*c.invW
			sum := q0 + q1 + q2
			var tc [2]float64
			for i := range tc {
				tc[i] = (q0*a.tc[i] + q1*b.tc[i] + q2*c.tc[i]) / sum
			}
			fn(x, y, tc)
		}
	}
}
