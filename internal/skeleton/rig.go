package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"

	"rigmesh/internal/mathutil"
	"rigmesh/internal/mesh"
)

// RigOptions sizes the preview geometry built by BuildRigMesh.
type RigOptions struct {
	JointSize float64 // edge length of the cube at each joint
	HeadSize  float64 // edge length used for HeadJoint instead
	HeadJoint string
	BoneWidth float64 // cross-section of the prism between joints
	EndSites  bool    // draw cubes on end sites too
}

func DefaultRigOptions() RigOptions {
	return RigOptions{
		JointSize: 2,
		HeadSize:  8,
		HeadJoint: "Head",
		BoneWidth: 0.5,
		EndSites:  true,
	}
}

// BuildRigMesh turns the current pose of the tree rooted at root into one
// quad mesh: a cube oriented with each joint, and a prism from every joint
// to each of its children.
func BuildRigMesh(root *Bone, opts RigOptions) *mesh.QuadMesh {
	unit := mesh.Cube(1)
	out := &mesh.QuadMesh{}
	root.Walk(func(b *Bone) {
		if !b.IsEndSite() || opts.EndSites {
			size := opts.JointSize
			if opts.HeadJoint != "" && b.Joint.Name == opts.HeadJoint {
				size = opts.HeadSize
			}
			if size > 0 {
				out.Append(unit, b.World.Mul4(mathutil.Scale(mgl64.Vec3{size, size, size})))
			}
		}
		from := b.Position()
		for _, c := range b.Children {
			if xf, ok := segment(from, c.Position(), opts.BoneWidth); ok {
				out.Append(unit, xf)
			}
		}
	})
	return out
}

// segment maps the unit cube onto a box of the given width spanning p1 to p2.
func segment(p1, p2 mgl64.Vec3, width float64) (mgl64.Mat4, bool) {
	d := p2.Sub(p1)
	length := d.Len()
	if length < 1e-9 || width <= 0 {
		return mgl64.Mat4{}, false
	}
	mid := p1.Add(p2).Mul(0.5)
	return mathutil.TRS(mid, mathutil.RotateTowards(d), mgl64.Vec3{width, length, width}), true
}
