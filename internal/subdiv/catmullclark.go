package subdiv

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"rigmesh/internal/mesh"
)

// FacePoints returns the centroid of every face.
func FacePoints(m *mesh.QuadMesh) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(m.Faces))
	for i, f := range m.Faces {
		pts[i] = m.Vertices[f[0]].Add(m.Vertices[f[1]]).Add(m.Vertices[f[2]]).Add(m.Vertices[f[3]]).Mul(0.25)
	}
	return pts
}

// EdgePoints averages each edge's endpoints with its adjacent face points:
// four points for interior edges, three for boundary edges.
func EdgePoints(m *mesh.QuadMesh, edges []Edge, facePoints []mgl64.Vec3) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(edges))
	for i, e := range edges {
		sum := m.Vertices[e.A].Add(m.Vertices[e.B]).Add(facePoints[e.F1])
		if e.IsBoundary() {
			pts[i] = sum.Mul(1.0 / 3)
			continue
		}
		pts[i] = sum.Add(facePoints[e.F2]).Mul(0.25)
	}
	return pts
}

// NewPoints repositions the original vertices with
//
//	(F + 2R + (n-3)P) / n
//
// where n is the number of incident edges, F the mean of incident face points,
// R the mean of incident edge midpoints and P the old position. Boundary
// vertices use the same rule. A vertex with no incident edge keeps its
// position.
func NewPoints(m *mesh.QuadMesh, edges []Edge, facePoints []mgl64.Vec3) []mgl64.Vec3 {
	nv := len(m.Vertices)
	midSum := make([]mgl64.Vec3, nv)
	edgeCount := make([]int, nv)
	for _, e := range edges {
		mid := m.Vertices[e.A].Add(m.Vertices[e.B]).Mul(0.5)
		midSum[e.A] = midSum[e.A].Add(mid)
		midSum[e.B] = midSum[e.B].Add(mid)
		edgeCount[e.A]++
		edgeCount[e.B]++
	}

	faceSum := make([]mgl64.Vec3, nv)
	faceCount := make([]int, nv)
	for fi, f := range m.Faces {
		for _, vi := range f {
			faceSum[vi] = faceSum[vi].Add(facePoints[fi])
			faceCount[vi]++
		}
	}

	pts := make([]mgl64.Vec3, nv)
	for i, p := range m.Vertices {
		n := edgeCount[i]
		if n == 0 || faceCount[i] == 0 {
			pts[i] = p
			continue
		}
		fn := float64(n)
		// F divides by the face count, not n; the two differ only on boundary vertices.
		F := faceSum[i].Mul(1 / float64(faceCount[i]))
		R := midSum[i].Mul(1 / fn)
		pts[i] = F.Add(R.Mul(2)).Add(p.Mul(fn - 3)).Mul(1 / fn)
	}
	return pts
}

// corner is one (face point, original point) incidence of the refined mesh.
// It collects the two edge points adjacent to that corner in the order they
// were recorded.
type corner struct {
	face, point int
	faceFirst   bool
	edges       [2]int
	n           int
}

// cornerKey is unordered by construction: the face side is always first.
type cornerKey struct{ face, point int }

// reconnect walks the edges in order and, for each edge point, records the
// two corners it joins on every adjacent face. Each pair is recorded in the
// direction that keeps the original face winding: (face, A) and (B, face)
// for F1, (A, face) and (face, B) for F2. Every corner ends up with exactly
// two edge points and becomes one output quad.
func reconnect(m *mesh.QuadMesh, edges []Edge) ([]mesh.Quad, error) {
	nv, ne := len(m.Vertices), len(edges)
	edgeBase, faceBase := nv, nv+ne

	index := make(map[cornerKey]int, len(m.Faces)*4)
	corners := make([]corner, 0, len(m.Faces)*4)
	record := func(face, point int, faceFirst bool, ep int) error {
		key := cornerKey{face, point}
		ci, ok := index[key]
		if !ok {
			index[key] = len(corners)
			corners = append(corners, corner{face: face, point: point, faceFirst: faceFirst, edges: [2]int{ep}, n: 1})
			return nil
		}
		c := &corners[ci]
		if c.n == 2 {
			return fmt.Errorf("subdiv: vertex %d appears more than once in face %d", point, face)
		}
		c.edges[1] = ep
		c.n++
		return nil
	}

	for ei, e := range edges {
		ep := edgeBase + ei
		f1 := faceBase + e.F1
		if err := record(f1, e.A, true, ep); err != nil {
			return nil, err
		}
		if err := record(f1, e.B, false, ep); err != nil {
			return nil, err
		}
		if e.IsBoundary() {
			continue
		}
		f2 := faceBase + e.F2
		if err := record(f2, e.A, false, ep); err != nil {
			return nil, err
		}
		if err := record(f2, e.B, true, ep); err != nil {
			return nil, err
		}
	}

	quads := make([]mesh.Quad, 0, len(corners))
	for _, c := range corners {
		if c.n != 2 {
			return nil, fmt.Errorf("subdiv: corner (face %d, vertex %d) has %d edges, mesh is non-manifold", c.face-faceBase, c.point, c.n)
		}
		// The first recorded direction fixes the cycle
		// face -> edges[1] -> point -> edges[0] (face first) or
		// point -> edges[1] -> face -> edges[0]; both start at the face point.
		if c.faceFirst {
			quads = append(quads, mesh.Quad{c.face, c.edges[1], c.point, c.edges[0]})
		} else {
			quads = append(quads, mesh.Quad{c.face, c.edges[0], c.point, c.edges[1]})
		}
	}
	return quads, nil
}

// Subdivide runs one Catmull-Clark step. The result has V+E+F vertices laid
// out as repositioned originals, then edge points, then face points, and 4F
// quads. The input is not modified.
func Subdivide(m *mesh.QuadMesh) (*mesh.QuadMesh, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("subdiv: %w", err)
	}
	if len(m.Faces) == 0 {
		return &mesh.QuadMesh{}, nil
	}

	edges := Edges(m)
	facePoints := FacePoints(m)
	edgePoints := EdgePoints(m, edges, facePoints)
	newPoints := NewPoints(m, edges, facePoints)

	quads, err := reconnect(m, edges)
	if err != nil {
		return nil, err
	}

	verts := make([]mgl64.Vec3, 0, len(newPoints)+len(edgePoints)+len(facePoints))
	verts = append(verts, newPoints...)
	verts = append(verts, edgePoints...)
	verts = append(verts, facePoints...)
	return &mesh.QuadMesh{Vertices: verts, Faces: quads}, nil
}

// SubdivideN applies Subdivide levels times. Zero levels returns a clone.
func SubdivideN(m *mesh.QuadMesh, levels int) (*mesh.QuadMesh, error) {
	if levels < 0 {
		return nil, fmt.Errorf("subdiv: negative level count %d", levels)
	}
	out := m.Clone()
	for i := 0; i < levels; i++ {
		next, err := Subdivide(out)
		if err != nil {
			return nil, fmt.Errorf("subdiv: level %d: %w", i+1, err)
		}
		out = next
	}
	return out, nil
}

// Stats counts vertices, edges and faces.
type Stats struct {
	V, E, F int
}

func (s Stats) String() string {
	return fmt.Sprintf("V=%d E=%d F=%d", s.V, s.E, s.F)
}

// Count returns the Stats of m.
func Count(m *mesh.QuadMesh) Stats {
	return Stats{V: len(m.Vertices), E: len(Edges(m)), F: len(m.Faces)}
}
