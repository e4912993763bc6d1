package skeleton

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigmesh/internal/bvh"
	"rigmesh/internal/logging"
	"rigmesh/internal/mathutil"
)

const eps = 1e-9

const spineBVH = `HIERARCHY
ROOT Hips
{
	OFFSET 0 0 0
	CHANNELS 6 Xposition Yposition Zposition Zrotation Xrotation Yrotation
	JOINT Chest
	{
		OFFSET 0 10 0
		CHANNELS 3 Zrotation Xrotation Yrotation
		JOINT Head
		{
			OFFSET 0 5 0
			CHANNELS 3 Zrotation Xrotation Yrotation
			End Site
			{
				OFFSET 0 3 0
			}
		}
	}
}
MOTION
Frames: 3
Frame Time: 0.1
0 0 0 0 0 0 0 0 0 0 0 0
1 2 3 0 0 0 90 0 0 0 0 0
5 0 0 0 0 0 0 0 0 0 0 0
`

func loadSpine(t *testing.T) *bvh.Motion {
	t.Helper()
	m, err := bvh.ParseString(spineBVH)
	require.NoError(t, err)
	return m
}

func newSpineAnimator(t *testing.T, opts ...Option) *Animator {
	t.Helper()
	a, err := NewAnimator(loadSpine(t), opts...)
	require.NoError(t, err)
	return a
}

func bonePos(t *testing.T, a *Animator, name string) mgl64.Vec3 {
	t.Helper()
	b, ok := a.Bone(name)
	require.True(t, ok, "bone %q", name)
	return b.Position()
}

func TestNewAnimatorRestPose(t *testing.T) {
	a := newSpineAnimator(t)
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, 0, a.Frame())
	require.Len(t, a.Bones(), 4)

	want := map[string]mgl64.Vec3{
		"Hips":    {0, 0, 0},
		"Chest":   {0, 10, 0},
		"Head":    {0, 15, 0},
		"HeadEnd": {0, 18, 0},
	}
	for name, p := range want {
		assert.True(t, bonePos(t, a, name).ApproxEqualThreshold(p, eps), name)
	}

	ids := map[uuid.UUID]bool{}
	for _, b := range a.Bones() {
		assert.NotEqual(t, uuid.Nil, b.Node.ID)
		assert.Equal(t, b.Joint.Name, b.Node.Name)
		assert.True(t, b.Node.Position.ApproxEqualThreshold(b.Position(), eps))
		ids[b.Node.ID] = true
	}
	assert.Len(t, ids, 4)

	end, _ := a.Bone("HeadEnd")
	assert.True(t, end.IsEndSite())
}

func TestNewAnimatorRejectsBadMotion(t *testing.T) {
	_, err := NewAnimator(nil)
	assert.Error(t, err)

	m := loadSpine(t)
	m.Keyframes = m.Keyframes[:2]
	_, err = NewAnimator(m)
	assert.Error(t, err)
}

func TestIdleDoesNotAdvance(t *testing.T) {
	a := newSpineAnimator(t)
	assert.False(t, a.Tick(time.Second))
	assert.Equal(t, 0, a.Frame())
}

func TestLoopReturnsToStart(t *testing.T) {
	a := newSpineAnimator(t)
	a.SetPlaying(true)
	var frames []int
	for i := 0; i < a.Motion().NumFrames; i++ {
		require.True(t, a.Tick(150*time.Millisecond))
		frames = append(frames, a.Frame())
	}
	assert.Equal(t, []int{1, 2, 0}, frames)
}

func TestAccumulatorResets(t *testing.T) {
	a := newSpineAnimator(t)
	a.SetPlaying(true)
	assert.False(t, a.Tick(60*time.Millisecond))
	assert.True(t, a.Tick(60*time.Millisecond))
	assert.Equal(t, 1, a.Frame())
	// The 20ms overshoot is discarded.
	assert.False(t, a.Tick(60*time.Millisecond))
	assert.Equal(t, 1, a.Frame())
}

func TestUpdateAndToggle(t *testing.T) {
	a := newSpineAnimator(t)
	assert.True(t, a.Update(time.Second, true))
	assert.Equal(t, Playing, a.State())
	assert.False(t, a.Update(time.Second, false))
	assert.Equal(t, Idle, a.State())
	assert.Equal(t, 1, a.Frame())

	assert.Equal(t, Playing, a.Toggle())
	assert.Equal(t, Idle, a.Toggle())
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "playing", Playing.String())
}

func TestPoseComposesParentFirst(t *testing.T) {
	a := newSpineAnimator(t)
	require.NoError(t, a.Seek(1))

	// Root moves to its position channels, Chest turns 90° about Z.
	assert.True(t, bonePos(t, a, "Hips").ApproxEqualThreshold(mgl64.Vec3{1, 2, 3}, eps))
	assert.True(t, bonePos(t, a, "Chest").ApproxEqualThreshold(mgl64.Vec3{1, 12, 3}, eps))
	assert.True(t, bonePos(t, a, "Head").ApproxEqualThreshold(mgl64.Vec3{-4, 12, 3}, eps), "%v", bonePos(t, a, "Head"))
	assert.True(t, bonePos(t, a, "HeadEnd").ApproxEqualThreshold(mgl64.Vec3{-7, 12, 3}, eps))

	chest, _ := a.Bone("Chest")
	assert.True(t, chest.Local.ApproxEqualThreshold(mathutil.Translate(mgl64.Vec3{0, 10, 0}).Mul4(mathutil.RotateZ(90)), eps))

	require.NoError(t, a.Seek(2))
	assert.True(t, bonePos(t, a, "Head").ApproxEqualThreshold(mgl64.Vec3{5, 15, 0}, eps))

	assert.Error(t, a.Seek(3))
	assert.Error(t, a.Seek(-1))
}

func TestEvaluatePoseMatchesAnimator(t *testing.T) {
	a := newSpineAnimator(t)
	require.NoError(t, a.Seek(1))
	worlds := EvaluatePose(a.Motion().Root, a.Motion().Keyframe(1))
	require.Len(t, worlds, len(a.Bones()))
	for i, b := range a.Bones() {
		assert.True(t, worlds[i].ApproxEqualThreshold(b.World, eps), b.Joint.Name)
	}
}

func TestRotationMatrixOrder(t *testing.T) {
	m := loadSpine(t)
	kf := make([]float64, m.ChannelCount)
	kf[3], kf[4], kf[5] = 30, 45, 60 // Hips: Z, X, Y
	want := mathutil.RotateZ(30).Mul4(mathutil.RotateX(45)).Mul4(mathutil.RotateY(60))
	assert.True(t, RotationMatrix(m.Root, kf).ApproxEqualThreshold(want, eps))

	end, ok := m.Joint("HeadEnd")
	require.True(t, ok)
	assert.Equal(t, mgl64.Ident4(), RotationMatrix(end, kf))
}

func TestLoopIsLogged(t *testing.T) {
	var out bytes.Buffer
	log := logging.NewWithWriters("anim", true, &out, &out)
	a := newSpineAnimator(t, WithLogger(log))
	a.SetPlaying(true)
	for i := 0; i < 3; i++ {
		a.Tick(time.Second)
	}
	assert.Contains(t, out.String(), "looped")
}

func TestEmptyMotionNeverAdvances(t *testing.T) {
	m, err := bvh.ParseString("HIERARCHY\nROOT A\n{\nOFFSET 0 0 0\nCHANNELS 3 Xrotation Yrotation Zrotation\n}\nMOTION\nFrames: 0\nFrame Time: 0.1\n")
	require.NoError(t, err)
	a, err := NewAnimator(m)
	require.NoError(t, err)
	assert.False(t, a.Update(time.Second, true))
	assert.Error(t, a.Seek(0))
}
