package geolayer

// quadVertexCount is the number of vertices of the bitmap quad: two
// triangles, no index buffer.
const quadVertexCount = 6

// unitSquare is the quad as two triangles over [-1, 1]².
var unitSquare = [quadVertexCount][2]float32{
	{1, 1}, {-1, 1}, {1, -1},
	{-1, 1}, {1, -1}, {-1, -1},
}

// AttributeTexCoords is the only vertex attribute of the bitmap geometry.
const AttributeTexCoords = "texCoords"

// QuadTexCoords returns the per-vertex texture coordinates of the bitmap
// quad, two floats per vertex. u runs left to right and v bottom to top in
// the corner interpolation. Bitmap rows are stored top first, so the
// fragment stage samples at (u, 1-v).
func QuadTexCoords() []float32 {
	tc := make([]float32, 0, quadVertexCount*2)
	for _, v := range unitSquare {
		tc = append(tc, v[0]/2+0.5, -v[1]/2+0.5)
	}
	return tc
}

// QuadGeometry returns the static geometry of the bitmap quad.
func QuadGeometry() Geometry {
	return Geometry{
		Topology:    TriangleList,
		VertexCount: quadVertexCount,
		Attributes: map[string][]float32{
			AttributeTexCoords: QuadTexCoords(),
		},
	}
}
