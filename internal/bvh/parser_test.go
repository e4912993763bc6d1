package bvh

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBVH = `HIERARCHY
ROOT Hips
{
	OFFSET 0.0 0.0 0.0
	CHANNELS 6 Xposition Yposition Zposition Zrotation Xrotation Yrotation
	JOINT Chest
	{
		OFFSET 0.0 5.0 0.0
		CHANNELS 3 Zrotation Xrotation Yrotation
		JOINT Head
		{
			OFFSET 0.0 3.0 0.0
			CHANNELS 3 Zrotation Xrotation Yrotation
			End Site
			{
				OFFSET 0.0 2.0 0.0
			}
		}
	}
	JOINT LeftLeg
	{
		OFFSET 1.0 -1.0 0.0
		CHANNELS 3 Xrotation Yrotation Zrotation
		End Site
		{
			OFFSET 0.0 -4.0 0.0
		}
	}
}
MOTION
Frames: 3
Frame Time: 0.05
1 2 3 0 0 0 0 0 0 0 0 0 0 0 0
1 2 4 10 20 30 1 2 3 4 5 6 7 8 9
1 2 5 0 0 90 0 0 0 0 0 0 0 0 0
`

func TestParseHierarchy(t *testing.T) {
	m, err := ParseString(sampleBVH)
	require.NoError(t, err)

	require.NotNil(t, m.Root)
	assert.Equal(t, "Hips", m.Root.Name)
	assert.Equal(t, 15, m.ChannelCount)
	require.Len(t, m.Root.Children, 2)

	chest := m.Root.Children[0]
	assert.Equal(t, "Chest", chest.Name)
	assert.Equal(t, mgl64.Vec3{0, 5, 0}, chest.Offset)

	head := chest.Children[0]
	require.Len(t, head.Children, 1)
	site := head.Children[0]
	assert.True(t, site.IsEndSite)
	assert.Equal(t, "HeadEnd", site.Name)
	assert.Equal(t, mgl64.Vec3{0, 2, 0}, site.Offset)
	assert.Empty(t, site.Children)
	assert.Empty(t, site.Channels)
	assert.Equal(t, [3]int{-1, -1, -1}, site.RotationChannels)

	var names []string
	for _, j := range m.Joints() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{"Hips", "Chest", "Head", "HeadEnd", "LeftLeg", "LeftLegEnd"}, names)
}

func TestParseChannelIndices(t *testing.T) {
	m, err := ParseString(sampleBVH)
	require.NoError(t, err)

	hips := m.Root
	assert.Equal(t, [3]int{0, 1, 2}, hips.PositionChannels)
	assert.True(t, hips.HasPosition())
	// Declared Z X Y: X is the 5th channel, Y the 6th, Z the 4th.
	assert.Equal(t, [3]int{4, 5, 3}, hips.RotationChannels)
	assert.Equal(t, [3]Axis{AxisZ, AxisX, AxisY}, hips.RotationOrder)

	leg, ok := m.Joint("LeftLeg")
	require.True(t, ok)
	assert.Equal(t, [3]int{12, 13, 14}, leg.RotationChannels)
	assert.Equal(t, [3]Axis{AxisX, AxisY, AxisZ}, leg.RotationOrder)
	assert.False(t, leg.HasPosition())
	assert.Equal(t, 12, leg.ChannelStart)

	_, ok = m.Joint("Tail")
	assert.False(t, ok)
}

func TestRotationChannelsAreDistinctAndInRange(t *testing.T) {
	m, err := ParseString(sampleBVH)
	require.NoError(t, err)

	seen := map[int]string{}
	for _, j := range m.Joints() {
		if j.IsEndSite {
			continue
		}
		for _, idx := range j.RotationChannels {
			require.GreaterOrEqual(t, idx, 0, j.Name)
			for _, kf := range m.Keyframes {
				require.Less(t, idx, len(kf), j.Name)
			}
			prev, dup := seen[idx]
			assert.False(t, dup, "channel %d used by %s and %s", idx, prev, j.Name)
			seen[idx] = j.Name
		}
	}
}

func TestParseMotion(t *testing.T) {
	m, err := ParseString(sampleBVH)
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumFrames)
	assert.InDelta(t, 0.05, m.FrameTime, 1e-12)
	assert.Equal(t, 50*time.Millisecond, m.FrameDuration())
	assert.Equal(t, 150*time.Millisecond, m.Duration())
	require.Len(t, m.Keyframes, 3)
	for _, kf := range m.Keyframes {
		assert.Len(t, kf, m.ChannelCount)
	}

	kf := m.Keyframes[1]
	assert.Equal(t, mgl64.Vec3{1, 2, 4}, m.Root.Position(kf))
	assert.Equal(t, [3]float64{20, 30, 10}, m.Root.Rotation(kf))

	assert.Equal(t, m.Keyframes[0], m.Keyframe(3))
	assert.Equal(t, m.Keyframes[2], m.Keyframe(-1))
}

func TestParseEmptyMotion(t *testing.T) {
	src := strings.Replace(sampleBVH, "Frames: 3", "Frames: 0", 1)
	src = src[:strings.Index(src, "Frame Time:")] + "Frame Time: 0.05\n"
	m, err := ParseString(src)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NumFrames)
	assert.Empty(t, m.Keyframes)
	assert.Nil(t, m.Keyframe(4))
}

func TestParseLayoutVariants(t *testing.T) {
	// Braces on the same line as the keyword, tabs and CRLF line endings.
	src := "HIERARCHY\r\nROOT Root {\r\n OFFSET 0 0 0\r\n CHANNELS 3 Xrotation Yrotation Zrotation\r\n" +
		" End Site {\r\n  OFFSET 0 1 0\r\n }\r\n}\r\nMOTION\r\nFrames:\t1\r\nFrame Time: 0.1\r\n\r\n0 0 0\r\n\r\n"
	m, err := ParseString(src)
	require.NoError(t, err)
	assert.Equal(t, "Root", m.Root.Name)
	assert.Equal(t, 1, m.NumFrames)
	assert.Equal(t, 3, m.ChannelCount)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unclosed joint",
			src:  strings.Replace(sampleBVH, "\t\t\t}\n\t\t}\n\t}\n\tJOINT LeftLeg", "\t\t\t}\n\t\t}\n\tJOINT LeftLeg", 1),
			want: ErrBraceNesting,
		},
		{
			name: "extra closing brace",
			src:  strings.Replace(sampleBVH, "}\nMOTION", "}\n}\nMOTION", 1),
			want: ErrBraceNesting,
		},
		{
			name: "missing opening brace",
			src:  strings.Replace(sampleBVH, "JOINT Chest\n\t{", "JOINT Chest\n", 1),
			want: ErrBraceNesting,
		},
		{
			name: "unknown channel",
			src:  strings.Replace(sampleBVH, "CHANNELS 3 Xrotation Yrotation Zrotation", "CHANNELS 3 Xrotation Yrotation Wrotation", 1),
			want: ErrUnknownChannel,
		},
		{
			name: "short frame line",
			src:  strings.Replace(sampleBVH, "1 2 5 0 0 90 0 0 0 0 0 0 0 0 0", "1 2 5 0 0 90 0 0 0 0 0 0 0 0", 1),
			want: ErrChannelCount,
		},
		{
			name: "long frame line",
			src:  strings.Replace(sampleBVH, "1 2 3 0 0 0 0 0 0 0 0 0 0 0 0", "1 2 3 0 0 0 0 0 0 0 0 0 0 0 0 0", 1),
			want: ErrChannelCount,
		},
		{
			name: "missing frames",
			src:  strings.Replace(sampleBVH, "Frames: 3", "Frames: 4", 1),
			want: ErrFrameCount,
		},
		{
			name: "huge frame count",
			src:  strings.Replace(sampleBVH, "Frames: 3", "Frames: 9223372036854775807", 1),
			want: ErrFrameCount,
		},
		{
			name: "frame count far beyond input",
			src:  strings.Replace(sampleBVH, "Frames: 3", "Frames: 1000000000", 1),
			want: ErrFrameCount,
		},
		{
			name: "extra frames",
			src:  strings.Replace(sampleBVH, "Frames: 3", "Frames: 2", 1),
			want: ErrFrameCount,
		},
		{
			name: "missing rotation axis",
			src:  strings.Replace(sampleBVH, "CHANNELS 3 Xrotation Yrotation Zrotation", "CHANNELS 2 Xrotation Yrotation", 1),
			want: ErrRotationChannels,
		},
		{
			name: "bad number",
			src:  strings.Replace(sampleBVH, "OFFSET 0.0 5.0 0.0", "OFFSET 0.0 five 0.0", 1),
			want: ErrSyntax,
		},
		{
			name: "no motion",
			src:  sampleBVH[:strings.Index(sampleBVH, "MOTION")],
			want: ErrSyntax,
		},
		{
			name: "two roots",
			src:  strings.Replace(sampleBVH, "}\nMOTION", "}\nROOT Other\n{\n}\nMOTION", 1),
			want: ErrSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseString(tt.src)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tt.want)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Greater(t, perr.Line, 0)
			assert.Contains(t, err.Error(), "bvh: line")
		})
	}
}

func TestParseErrorLine(t *testing.T) {
	src := strings.Replace(sampleBVH, "CHANNELS 3 Zrotation Xrotation Yrotation\n\t\tJOINT Head", "CHANNELS 3 Zrotation Qrotation Yrotation\n\t\tJOINT Head", 1)
	_, err := ParseString(src)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 9, perr.Line)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.bvh")
	require.NoError(t, os.WriteFile(path, []byte(sampleBVH), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumFrames)

	_, err = Load(filepath.Join(dir, "missing.bvh"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.bvh")
	require.NoError(t, os.WriteFile(bad, []byte("HIERARCHY\nROOT"), 0o644))
	_, err = Load(bad)
	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "bad.bvh")
}

func TestChannelHelpers(t *testing.T) {
	assert.Equal(t, "Zrotation", Zrotation.String())
	assert.Equal(t, AxisZ, Zrotation.Axis())
	assert.Equal(t, AxisY, Yposition.Axis())
	assert.True(t, Xrotation.IsRotation())
	assert.False(t, Zposition.IsRotation())
	assert.Equal(t, "Unknown", Channel(42).String())
	assert.Equal(t, "Y", AxisY.String())
}
