package subdiv

import "rigmesh/internal/mesh"

// NoFace marks the missing second face of a boundary edge.
const NoFace = -1

// Edge is an unordered vertex pair with its adjacent faces. A and B keep the
// orientation of the first face that produced the edge.
type Edge struct {
	A, B   int
	F1, F2 int
}

// IsBoundary reports whether only one face uses the edge.
func (e Edge) IsBoundary() bool { return e.F2 == NoFace }

// edgeKey is the canonical (smaller index first) form of an unordered pair.
type edgeKey struct{ lo, hi int }

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Edges lists every face side once, in first-seen order. An edge seen a
// second time records that face as F2; later sightings are ignored, so
// non-manifold edges keep their first two faces.
func Edges(m *mesh.QuadMesh) []Edge {
	index := make(map[edgeKey]int, len(m.Faces)*2)
	edges := make([]Edge, 0, len(m.Faces)*2)
	for fi, f := range m.Faces {
		for k := 0; k < 4; k++ {
			a, b := f[k], f[(k+1)%4]
			key := keyOf(a, b)
			if ei, ok := index[key]; ok {
				if edges[ei].F2 == NoFace && edges[ei].F1 != fi {
					edges[ei].F2 = fi
				}
				continue
			}
			index[key] = len(edges)
			edges = append(edges, Edge{A: a, B: b, F1: fi, F2: NoFace})
		}
	}
	return edges
}
