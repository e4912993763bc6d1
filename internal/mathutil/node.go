package mathutil

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Node is a spatial handle handed to the rendering layer. Matrix is the
// authoritative transform; Position, Rotation and Scale are its decomposition.
type Node struct {
	ID       uuid.UUID
	Name     string
	Matrix   mgl64.Mat4
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewNode returns a node at the origin with a fresh ID.
func NewNode(name string) *Node {
	return &Node{
		ID:       uuid.New(),
		Name:     name,
		Matrix:   mgl64.Ident4(),
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// ApplyTransform sets the node's transform to m and refreshes the
// translation/rotation/scale decomposition. m must be affine.
func ApplyTransform(n *Node, m mgl64.Mat4) {
	n.Matrix = m
	n.Position = m.Col(3).Vec3()

	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	// Reflection goes into the X scale.
	if c0.Cross(c1).Dot(c2) < 0 {
		sx = -sx
	}
	n.Scale = mgl64.Vec3{sx, sy, sz}

	if sx == 0 || sy == 0 || sz == 0 {
		n.Rotation = mgl64.QuatIdent()
		return
	}
	rot := mgl64.Mat4FromCols(
		c0.Mul(1/sx).Vec4(0),
		c1.Mul(1/sy).Vec4(0),
		c2.Mul(1/sz).Vec4(0),
		mgl64.Vec4{0, 0, 0, 1},
	)
	n.Rotation = mgl64.Mat4ToQuat(rot).Normalize()
}
