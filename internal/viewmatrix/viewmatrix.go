package viewmatrix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"rigmesh/internal/mathutil"
)

// DefaultFOV is the vertical field of view used when a perspective camera
// leaves FOV unset.
const DefaultFOV = 30.0

// Camera orbits the model's bounding box. Angles in degrees; a negative pitch
// looks down on the model.
type Camera struct {
	Yaw         float64
	Pitch       float64
	Perspective bool
	FOV         float64
}

// View returns the model-to-view rotation. View space is X right, Y up and
// +Z toward the viewer.
func (c Camera) View() mgl64.Mat4 {
	return mathutil.Compose(mathutil.RotateX(-c.Pitch), mathutil.RotateY(-c.Yaw))
}

// Fit returns the view-space center of the vertices' bounding box and the
// larger of its X and Y extents.
func Fit(verts []mgl64.Vec3, R mgl64.Mat4) (center mgl64.Vec3, span float64) {
	if len(verts) == 0 {
		return mgl64.Vec3{}, 0
	}
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range verts {
		t := mathutil.TransformDir(R, v)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], t[k])
			hi[k] = math.Max(hi[k], t[k])
		}
	}
	center = lo.Add(hi).Mul(0.5)
	span = math.Max(hi[0]-lo[0], hi[1]-lo[1])
	return center, span
}

// PixelScale maps a view-space span onto renderSize pixels minus a margin on
// each side.
func PixelScale(span float64, renderSize, margin int) float64 {
	if span < 0.001 {
		span = 0.001
	}
	usable := renderSize - 2*margin
	if usable < 1 {
		usable = 1
	}
	return float64(usable) / span
}

// ProjectVertices transforms vertices to screen space: px right, py down,
// pz depth (larger is nearer).
func ProjectVertices(verts []mgl64.Vec3, R mgl64.Mat4, center mgl64.Vec3, scale float64, renderSize int, cam Camera) (px, py, pz []float64) {
	n := len(verts)
	px = make([]float64, n)
	py = make([]float64, n)
	pz = make([]float64, n)
	half := float64(renderSize) / 2

	view := make([]mgl64.Vec3, n)
	for i, v := range verts {
		view[i] = mathutil.TransformDir(R, v)
	}

	var camDist float64
	if cam.Perspective {
		fov := cam.FOV
		if fov <= 0 {
			fov = DefaultFOV
		}
		var xyMax, zMax float64
		zMax = math.Inf(-1)
		for _, t := range view {
			xyMax = math.Max(xyMax, math.Max(math.Abs(t[0]-center[0]), math.Abs(t[1]-center[1])))
			zMax = math.Max(zMax, t[2]-center[2])
		}
		if xyMax < 0.001 {
			xyMax = 0.001
		}
		// Keep the eye in front of the nearest vertex.
		camDist = math.Max(xyMax/math.Tan(mgl64.DegToRad(fov/2)), zMax+xyMax)
	}

	for i, t := range view {
		x, y := t[0]-center[0], t[1]-center[1]
		if cam.Perspective {
			depth := math.Max(camDist-(t[2]-center[2]), 0.1)
			f := camDist / depth
			x *= f
			y *= f
		}
		px[i] = x*scale + half
		py[i] = -y*scale + half
		pz[i] = t[2]
	}
	return px, py, pz
}
