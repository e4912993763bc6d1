package bvh

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis identifies one of the three principal axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return "?"
}

// Channel is one degree of freedom of a joint.
type Channel int

const (
	Xposition Channel = iota
	Yposition
	Zposition
	Xrotation
	Yrotation
	Zrotation
)

var channelNames = [...]string{"Xposition", "Yposition", "Zposition", "Xrotation", "Yrotation", "Zrotation"}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return "Unknown"
	}
	return channelNames[c]
}

// IsRotation reports whether c is one of the rotation channels.
func (c Channel) IsRotation() bool { return c >= Xrotation && c <= Zrotation }

// Axis returns the axis the channel acts on.
func (c Channel) Axis() Axis { return Axis(int(c) % 3) }

func lookupChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// Joint is one node of the skeleton hierarchy.
//
// RotationChannels and PositionChannels are indexed by Axis and hold the
// position of that channel in every keyframe, or -1 when the joint does not
// declare it. RotationOrder lists the axes in declaration order; the joint's
// rotation is RotationOrder[0] × RotationOrder[1] × RotationOrder[2].
type Joint struct {
	Name             string
	Offset           mgl64.Vec3
	Channels         []Channel
	ChannelStart     int
	RotationChannels [3]int
	RotationOrder    [3]Axis
	PositionChannels [3]int
	IsEndSite        bool
	Children         []*Joint
}

func newJoint(name string) *Joint {
	return &Joint{
		Name:             name,
		RotationChannels: [3]int{-1, -1, -1},
		RotationOrder:    [3]Axis{AxisX, AxisY, AxisZ},
		PositionChannels: [3]int{-1, -1, -1},
	}
}

// HasPosition reports whether all three position channels are present.
func (j *Joint) HasPosition() bool {
	return j.PositionChannels[0] >= 0 && j.PositionChannels[1] >= 0 && j.PositionChannels[2] >= 0
}

// Rotation returns the per-axis rotation values (degrees) of j in keyframe.
// End sites return zeros.
func (j *Joint) Rotation(keyframe []float64) [3]float64 {
	var r [3]float64
	for axis, idx := range j.RotationChannels {
		if idx >= 0 {
			r[axis] = keyframe[idx]
		}
	}
	return r
}

// Position returns the position channel values of j in keyframe.
func (j *Joint) Position(keyframe []float64) mgl64.Vec3 {
	var p mgl64.Vec3
	for axis, idx := range j.PositionChannels {
		if idx >= 0 {
			p[axis] = keyframe[idx]
		}
	}
	return p
}

// Walk visits j and its descendants depth-first, parents before children.
func (j *Joint) Walk(fn func(j *Joint, depth int)) {
	j.walk(fn, 0)
}

func (j *Joint) walk(fn func(*Joint, int), depth int) {
	fn(j, depth)
	for _, c := range j.Children {
		c.walk(fn, depth+1)
	}
}

// Motion is a parsed skeleton plus its keyframes. Every keyframe has
// ChannelCount values.
type Motion struct {
	Root         *Joint
	NumFrames    int
	FrameTime    float64 // seconds
	ChannelCount int
	Keyframes    [][]float64
}

// Joints returns every joint, end sites included, depth-first.
func (m *Motion) Joints() []*Joint {
	var out []*Joint
	m.Root.Walk(func(j *Joint, _ int) {
		out = append(out, j)
	})
	return out
}

// Joint finds a joint by name.
func (m *Motion) Joint(name string) (*Joint, bool) {
	var found *Joint
	m.Root.Walk(func(j *Joint, _ int) {
		if found == nil && j.Name == name {
			found = j
		}
	})
	return found, found != nil
}

// Keyframe returns frame i, wrapping around NumFrames.
func (m *Motion) Keyframe(i int) []float64 {
	if m.NumFrames == 0 {
		return nil
	}
	i %= m.NumFrames
	if i < 0 {
		i += m.NumFrames
	}
	return m.Keyframes[i]
}

// FrameDuration is FrameTime as a time.Duration.
func (m *Motion) FrameDuration() time.Duration {
	return time.Duration(m.FrameTime * float64(time.Second))
}

// Duration is the length of one loop of the animation.
func (m *Motion) Duration() time.Duration {
	return time.Duration(float64(m.NumFrames) * m.FrameTime * float64(time.Second))
}
