package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"rigmesh/internal/mathutil"
)

var (
	ErrNotQuad    = errors.New("face is not a quad")
	ErrIndexRange = errors.New("face index out of range")
)

// Quad holds four vertex indices in winding order.
type Quad [4]int

// QuadMesh is a flat vertex list plus quad faces indexing into it.
// Normals is nil until CalculateNormals runs.
type QuadMesh struct {
	Vertices []mgl64.Vec3
	Faces    []Quad
	Normals  []mgl64.Vec3

	flat bool
}

// New builds a mesh and validates every face index.
func New(vertices []mgl64.Vec3, faces []Quad) (*QuadMesh, error) {
	m := &QuadMesh{Vertices: vertices, Faces: faces}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromIndices builds a mesh from a flat index list, four indices per face.
func FromIndices(vertices []mgl64.Vec3, indices []int) (*QuadMesh, error) {
	if len(indices)%4 != 0 {
		return nil, fmt.Errorf("mesh: %d indices do not form whole quads: %w", len(indices), ErrNotQuad)
	}
	faces := make([]Quad, len(indices)/4)
	for i := range faces {
		copy(faces[i][:], indices[i*4:i*4+4])
	}
	return New(vertices, faces)
}

// Validate checks that every face index addresses a vertex.
func (m *QuadMesh) Validate() error {
	n := len(m.Vertices)
	for fi, f := range m.Faces {
		for k, vi := range f {
			if vi < 0 || vi >= n {
				return fmt.Errorf("mesh: face %d corner %d: index %d of %d vertices: %w", fi, k, vi, n, ErrIndexRange)
			}
		}
	}
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("mesh: %d normals for %d vertices", len(m.Normals), n)
	}
	return nil
}

func (m *QuadMesh) VertexCount() int { return len(m.Vertices) }
func (m *QuadMesh) FaceCount() int   { return len(m.Faces) }

// IsFlatShaded reports whether MakeFlatShaded produced this mesh's layout.
func (m *QuadMesh) IsFlatShaded() bool { return m.flat }

// Clone returns a deep copy.
func (m *QuadMesh) Clone() *QuadMesh {
	c := &QuadMesh{
		Vertices: append([]mgl64.Vec3(nil), m.Vertices...),
		Faces:    append([]Quad(nil), m.Faces...),
		flat:     m.flat,
	}
	if m.Normals != nil {
		c.Normals = append([]mgl64.Vec3(nil), m.Normals...)
	}
	return c
}

// FaceNormal is (p1-p2)×(p1-p3) over the first three corners of face f,
// unnormalized.
func (m *QuadMesh) FaceNormal(f Quad) mgl64.Vec3 {
	p1, p2, p3 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return p1.Sub(p2).Cross(p1.Sub(p3))
}

// CalculateNormals sets one normal per vertex: the normalized sum of the face
// normals of every face containing it. A vertex used by no face gets the zero
// vector.
func (m *QuadMesh) CalculateNormals() {
	normals := make([]mgl64.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		fn := m.FaceNormal(f)
		for k, vi := range f {
			if containsBefore(f, k, vi) {
				continue
			}
			normals[vi] = normals[vi].Add(fn)
		}
	}
	for i := range normals {
		normals[i] = mathutil.Normalize(normals[i])
	}
	m.Normals = normals
}

// containsBefore reports whether vi already appears in f[:k].
func containsBefore(f Quad, k, vi int) bool {
	for i := 0; i < k; i++ {
		if f[i] == vi {
			return true
		}
	}
	return false
}

// MakeFlatShaded gives every face its own copy of its four vertices, so no
// vertex is shared between faces. Normals are cleared and must be
// recalculated.
func (m *QuadMesh) MakeFlatShaded() {
	verts := make([]mgl64.Vec3, 0, len(m.Faces)*4)
	faces := make([]Quad, len(m.Faces))
	for fi, f := range m.Faces {
		base := len(verts)
		for k, vi := range f {
			verts = append(verts, m.Vertices[vi])
			faces[fi][k] = base + k
		}
	}
	m.Vertices = verts
	m.Faces = faces
	m.Normals = nil
	m.flat = true
}

// Triangles splits every quad into (0,1,2) and (0,2,3).
func (m *QuadMesh) Triangles() [][3]int {
	tris := make([][3]int, 0, len(m.Faces)*2)
	for _, f := range m.Faces {
		tris = append(tris, [3]int{f[0], f[1], f[2]}, [3]int{f[0], f[2], f[3]})
	}
	return tris
}

// Indices returns the faces as a flat list, four indices per face.
func (m *QuadMesh) Indices() []int {
	out := make([]int, 0, len(m.Faces)*4)
	for _, f := range m.Faces {
		out = append(out, f[:]...)
	}
	return out
}

// Bounds returns the axis-aligned bounding box. An empty mesh yields zeros.
func (m *QuadMesh) Bounds() (lo, hi mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range m.Vertices {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return lo, hi
}

// Append adds other's geometry transformed by xf. Normals are dropped since
// they no longer cover every vertex.
func (m *QuadMesh) Append(other *QuadMesh, xf mgl64.Mat4) {
	base := len(m.Vertices)
	for _, v := range other.Vertices {
		m.Vertices = append(m.Vertices, mathutil.TransformPoint(xf, v))
	}
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, Quad{f[0] + base, f[1] + base, f[2] + base, f[3] + base})
	}
	m.Normals = nil
}
