package mesh

import "github.com/go-gl/mathgl/mgl64"

// Cube returns an axis-aligned cube centered on the origin with outward
// facing counter-clockwise quads.
func Cube(size float64) *QuadMesh {
	h := size / 2
	return &QuadMesh{
		Vertices: []mgl64.Vec3{
			{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
			{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
		},
		Faces: []Quad{
			{4, 5, 6, 7}, // +Z
			{0, 3, 2, 1}, // -Z
			{1, 2, 6, 5}, // +X
			{0, 4, 7, 3}, // -X
			{3, 7, 6, 2}, // +Y
			{0, 1, 5, 4}, // -Y
		},
	}
}

// Grid returns an open nx×ny patch of square cells in the z=0 plane, facing +Z.
// Its outer edges are boundary edges.
func Grid(nx, ny int, cell float64) *QuadMesh {
	if nx < 1 || ny < 1 {
		return &QuadMesh{}
	}
	m := &QuadMesh{
		Vertices: make([]mgl64.Vec3, 0, (nx+1)*(ny+1)),
		Faces:    make([]Quad, 0, nx*ny),
	}
	for y := 0; y <= ny; y++ {
		for x := 0; x <= nx; x++ {
			m.Vertices = append(m.Vertices, mgl64.Vec3{float64(x) * cell, float64(y) * cell, 0})
		}
	}
	stride := nx + 1
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			a := y*stride + x
			m.Faces = append(m.Faces, Quad{a, a + 1, a + stride + 1, a + stride})
		}
	}
	return m
}
