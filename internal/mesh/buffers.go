package mesh

// Buffers is the flat layout handed to a rendering backend.
type Buffers struct {
	Positions []float32 // x,y,z per vertex
	Normals   []float32 // x,y,z per vertex; empty when the mesh has none
	Indices   []uint32  // 3 per triangle, or 4 per quad
}

// Buffers flattens the mesh. With triangulate set each quad becomes two
// triangles; otherwise indices are emitted four per face.
func (m *QuadMesh) Buffers(triangulate bool) Buffers {
	b := Buffers{Positions: make([]float32, 0, len(m.Vertices)*3)}
	for _, v := range m.Vertices {
		b.Positions = append(b.Positions, float32(v[0]), float32(v[1]), float32(v[2]))
	}
	if m.Normals != nil {
		b.Normals = make([]float32, 0, len(m.Normals)*3)
		for _, n := range m.Normals {
			b.Normals = append(b.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
		}
	}
	if triangulate {
		b.Indices = make([]uint32, 0, len(m.Faces)*6)
		for _, t := range m.Triangles() {
			b.Indices = append(b.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
		}
		return b
	}
	b.Indices = make([]uint32, 0, len(m.Faces)*4)
	for _, f := range m.Faces {
		b.Indices = append(b.Indices, uint32(f[0]), uint32(f[1]), uint32(f[2]), uint32(f[3]))
	}
	return b
}
