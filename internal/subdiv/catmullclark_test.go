package subdiv

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigmesh/internal/mesh"
)

const eps = 1e-9

func unitQuad() *mesh.QuadMesh {
	return &mesh.QuadMesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Faces:    []mesh.Quad{{0, 1, 2, 3}},
	}
}

func requireValidQuads(t *testing.T, m *mesh.QuadMesh) {
	t.Helper()
	for fi, f := range m.Faces {
		seen := map[int]bool{}
		for _, vi := range f {
			require.GreaterOrEqual(t, vi, 0, "face %d", fi)
			require.Less(t, vi, len(m.Vertices), "face %d", fi)
			require.False(t, seen[vi], "face %d repeats vertex %d", fi, vi)
			seen[vi] = true
		}
	}
}

func TestEdges(t *testing.T) {
	g := mesh.Grid(2, 1, 1)
	edges := Edges(g)
	require.Len(t, edges, 7)

	boundary := 0
	for _, e := range edges {
		if e.IsBoundary() {
			boundary++
			continue
		}
		assert.Equal(t, 0, e.F1)
		assert.Equal(t, 1, e.F2)
		assert.ElementsMatch(t, []int{1, 4}, []int{e.A, e.B})
	}
	assert.Equal(t, 6, boundary)

	// First sighting fixes the orientation.
	assert.Equal(t, Edge{A: 0, B: 1, F1: 0, F2: NoFace}, edges[0])
}

func TestSubdivideSingleQuad(t *testing.T) {
	in := unitQuad()
	out, err := Subdivide(in)
	require.NoError(t, err)

	require.Len(t, out.Vertices, 9)
	require.Len(t, out.Faces, 4)
	requireValidQuads(t, out)

	fp := mgl64.Vec3{0.5, 0.5, 0}
	assert.True(t, out.Vertices[8].ApproxEqualThreshold(fp, eps))

	edges := Edges(in)
	require.Len(t, edges, 4)
	for i, e := range edges {
		assert.True(t, e.IsBoundary())
		want := in.Vertices[e.A].Add(in.Vertices[e.B]).Add(fp).Mul(1.0 / 3)
		assert.True(t, out.Vertices[4+i].ApproxEqualThreshold(want, eps), "edge %d: %v", i, out.Vertices[4+i])
	}

	// Boundary corners use the interior rule and land on the face point.
	for i := 0; i < 4; i++ {
		assert.True(t, out.Vertices[i].ApproxEqualThreshold(fp, eps), "corner %d: %v", i, out.Vertices[i])
	}

	// Each child quad starts at the face point and contains one original corner.
	corners := map[int]bool{}
	for _, f := range out.Faces {
		assert.Equal(t, 8, f[0])
		assert.Less(t, f[2], 4)
		assert.GreaterOrEqual(t, f[1], 4)
		assert.GreaterOrEqual(t, f[3], 4)
		corners[f[2]] = true
	}
	assert.Len(t, corners, 4)
}

func TestSubdivideSingleQuadExactFaces(t *testing.T) {
	out, err := Subdivide(unitQuad())
	require.NoError(t, err)
	// Edges: 0:(0,1) 1:(1,2) 2:(2,3) 3:(3,0) -> edge points 4..7, face point 8.
	assert.Equal(t, []mesh.Quad{
		{8, 7, 0, 4},
		{8, 4, 1, 5},
		{8, 5, 2, 6},
		{8, 6, 3, 7},
	}, out.Faces)
}

func TestSubdivideCube(t *testing.T) {
	cube := mesh.Cube(2)
	before := cube.Clone()

	s := Count(cube)
	assert.Equal(t, Stats{V: 8, E: 12, F: 6}, s)

	out, err := Subdivide(cube)
	require.NoError(t, err)
	assert.Len(t, out.Vertices, s.V+s.E+s.F)
	assert.Len(t, out.Faces, 4*s.F)
	requireValidQuads(t, out)

	// Input untouched.
	assert.Equal(t, before, cube)

	// Corner (1,1,1) moves to 5/9 on every axis.
	assert.True(t, out.Vertices[6].ApproxEqualThreshold(mgl64.Vec3{5.0 / 9, 5.0 / 9, 5.0 / 9}, eps), "%v", out.Vertices[6])

	// Every edge of a closed cube is interior.
	for i, e := range Edges(cube) {
		require.False(t, e.IsBoundary())
		fp1 := out.Vertices[s.V+s.E+e.F1]
		fp2 := out.Vertices[s.V+s.E+e.F2]
		want := cube.Vertices[e.A].Add(cube.Vertices[e.B]).Add(fp1).Add(fp2).Mul(0.25)
		assert.True(t, out.Vertices[s.V+i].ApproxEqualThreshold(want, eps))
	}

	// Winding survives: every child face still points outward.
	for fi, f := range out.Faces {
		n := out.FaceNormal(f)
		c := out.Vertices[f[0]].Add(out.Vertices[f[1]]).Add(out.Vertices[f[2]]).Add(out.Vertices[f[3]])
		assert.Greater(t, n.Dot(c), 0.0, "face %d", fi)
	}
}

func TestSubdivideGridCounts(t *testing.T) {
	g := mesh.Grid(3, 2, 1)
	s := Count(g)
	assert.Equal(t, Stats{V: 12, E: 17, F: 6}, s)

	out, err := Subdivide(g)
	require.NoError(t, err)
	assert.Len(t, out.Vertices, 35)
	assert.Len(t, out.Faces, 24)
	requireValidQuads(t, out)

	// An interior vertex (valence 4) of a flat grid stays in place.
	assert.True(t, out.Vertices[5].ApproxEqualThreshold(g.Vertices[5], eps))
}

func TestSubdivideN(t *testing.T) {
	out, err := SubdivideN(mesh.Cube(1), 2)
	require.NoError(t, err)
	assert.Len(t, out.Vertices, 98)
	assert.Len(t, out.Faces, 96)
	requireValidQuads(t, out)
	assert.Equal(t, "V=98 E=192 F=96", Count(out).String())

	same, err := SubdivideN(mesh.Cube(1), 0)
	require.NoError(t, err)
	assert.Equal(t, mesh.Cube(1), same)

	_, err = SubdivideN(mesh.Cube(1), -1)
	assert.Error(t, err)
}

func TestSubdivideEmpty(t *testing.T) {
	out, err := Subdivide(&mesh.QuadMesh{})
	require.NoError(t, err)
	assert.Empty(t, out.Vertices)
	assert.Empty(t, out.Faces)
}

func TestSubdivideRejectsBadIndices(t *testing.T) {
	m := unitQuad()
	m.Faces[0][2] = 9
	_, err := Subdivide(m)
	assert.ErrorIs(t, err, mesh.ErrIndexRange)
}

func TestSubdivideNonManifold(t *testing.T) {
	m := &mesh.QuadMesh{
		Vertices: make([]mgl64.Vec3, 8),
		Faces: []mesh.Quad{
			{0, 1, 2, 3},
			{1, 0, 4, 5},
			{0, 1, 6, 7},
		},
	}
	_, err := Subdivide(m)
	assert.Error(t, err)
}

func TestFacePointsAndUnusedVertex(t *testing.T) {
	m := unitQuad()
	m.Vertices = append(m.Vertices, mgl64.Vec3{7, 7, 7})
	fps := FacePoints(m)
	require.Len(t, fps, 1)
	assert.Equal(t, mgl64.Vec3{0.5, 0.5, 0}, fps[0])

	pts := NewPoints(m, Edges(m), fps)
	assert.Equal(t, mgl64.Vec3{7, 7, 7}, pts[4])
}
