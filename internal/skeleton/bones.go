package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"

	"rigmesh/internal/bvh"
	"rigmesh/internal/mathutil"
)

// Bone pairs a joint with its live transform. Local and World are rewritten
// on every pose; Node mirrors World for the rendering layer.
type Bone struct {
	Joint    *bvh.Joint
	Node     *mathutil.Node
	Local    mgl64.Mat4
	World    mgl64.Mat4
	Children []*Bone
}

// IsEndSite reports whether the bone is a leaf placeholder.
func (b *Bone) IsEndSite() bool { return b.Joint.IsEndSite }

// Position is the bone's world-space origin.
func (b *Bone) Position() mgl64.Vec3 { return b.World.Col(3).Vec3() }

// Walk visits b and its descendants depth-first, parents first.
func (b *Bone) Walk(fn func(*Bone)) {
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// BuildBones mirrors the joint tree and places it at the rest pose, where
// every joint sits at the sum of its ancestors' offsets with no rotation.
func BuildBones(root *bvh.Joint) *Bone {
	return buildBone(root, mgl64.Ident4())
}

func buildBone(j *bvh.Joint, parent mgl64.Mat4) *Bone {
	b := &Bone{
		Joint: j,
		Node:  mathutil.NewNode(j.Name),
		Local: mathutil.Translate(j.Offset),
	}
	b.World = parent.Mul4(b.Local)
	mathutil.ApplyTransform(b.Node, b.World)
	b.Children = make([]*Bone, 0, len(j.Children))
	for _, c := range j.Children {
		b.Children = append(b.Children, buildBone(c, b.World))
	}
	return b
}

// RotationMatrix multiplies the joint's three per-axis rotations in its
// declared channel order. End sites have no rotation.
func RotationMatrix(j *bvh.Joint, keyframe []float64) mgl64.Mat4 {
	if j.IsEndSite {
		return mgl64.Ident4()
	}
	angles := j.Rotation(keyframe)
	r := mgl64.Ident4()
	for _, axis := range j.RotationOrder {
		r = r.Mul4(mathutil.RotateAxis(int(axis), angles[axis]))
	}
	return r
}

// LocalTransform is Translate × Rotation × Scale(1) for j in keyframe. The root
// is translated by its position channels when it has them; every other joint
// by its offset.
func LocalTransform(j *bvh.Joint, isRoot bool, keyframe []float64) mgl64.Mat4 {
	t := j.Offset
	if isRoot && j.HasPosition() {
		t = j.Position(keyframe)
	}
	return mathutil.TRS(t, RotationMatrix(j, keyframe), mgl64.Vec3{1, 1, 1})
}

// Pose recomputes every bone of the tree rooted at root for keyframe in one
// top-down pass.
func Pose(root *Bone, keyframe []float64) {
	poseBone(root, mgl64.Ident4(), true, keyframe)
}

func poseBone(b *Bone, parent mgl64.Mat4, isRoot bool, keyframe []float64) {
	b.Local = LocalTransform(b.Joint, isRoot, keyframe)
	b.World = parent.Mul4(b.Local)
	mathutil.ApplyTransform(b.Node, b.World)
	for _, c := range b.Children {
		poseBone(c, b.World, false, keyframe)
	}
}

// EvaluatePose returns the world matrix of every joint under root for
// keyframe, in depth-first order (the order of bvh.Motion.Joints). It does not
// touch any Bone.
func EvaluatePose(root *bvh.Joint, keyframe []float64) []mgl64.Mat4 {
	var out []mgl64.Mat4
	var walk func(j *bvh.Joint, parent mgl64.Mat4, isRoot bool)
	walk = func(j *bvh.Joint, parent mgl64.Mat4, isRoot bool) {
		w := parent.Mul4(LocalTransform(j, isRoot, keyframe))
		out = append(out, w)
		for _, c := range j.Children {
			walk(c, w, false)
		}
	}
	walk(root, mgl64.Ident4(), true)
	return out
}
