package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"rigmesh/internal/mathutil"
)

// Vertex is one projected triangle corner. N is the view-space normal and is
// only read when smooth shading is requested.
type Vertex struct {
	X, Y, Z float64
	N       mgl64.Vec3
}

// Material selects how covered pixels are colored. With a Matcap the color
// comes straight from the matcap; otherwise Base is lit with Light.
type Material struct {
	Base   color.NRGBA
	Matcap *image.NRGBA
	Light  *LightConfig
}

func (m *Material) colorFor(n mgl64.Vec3) (r, g, b, a uint8) {
	if m.Matcap != nil {
		return SampleMatcap(m.Matcap, n)
	}
	r, g, b = m.Light.Shade(m.Base.R, m.Base.G, m.Base.B, m.Light.ComputeShade(n))
	return r, g, b, m.Base.A
}

// RasterizeTriangle fills one triangle with a z-test. When smooth is set the
// corner normals are interpolated per pixel; otherwise the face normal is
// used for the whole triangle.
//
// The pixel loop does not allocate.
func RasterizeTriangle(fb *FrameBuffer, a, b, c Vertex, mat *Material, smooth bool) {
	x0, y0, z0 := a.X, a.Y, a.Z
	x1, y1, z1 := b.X, b.Y, b.Z
	x2, y2, z2 := c.X, c.Y, c.Z

	// Face normal in view space (screen Y points down).
	e1 := mgl64.Vec3{x1 - x0, -(y1 - y0), z1 - z0}
	e2 := mgl64.Vec3{x2 - x0, -(y2 - y0), z2 - z0}
	face := e1.Cross(e2)
	if face.Len() < 1e-8 {
		return
	}
	face = face.Normalize()
	if face[2] < 0 {
		face = face.Mul(-1)
	}

	var flatR, flatG, flatB, flatA uint8
	if !smooth {
		flatR, flatG, flatB, flatA = mat.colorFor(face)
	}

	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := flatR, flatG, flatB, flatA
			if smooth {
				n := mathutil.Normalize(a.N.Mul(w0).Add(b.N.Mul(w1)).Add(c.N.Mul(w2)))
				if n[2] < 0 {
					n = n.Mul(-1)
				}
				cr, cg, cb, ca = mat.colorFor(n)
			}
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			px := zIdx * 4
			fb.Color[px] = cr
			fb.Color[px+1] = cg
			fb.Color[px+2] = cb
			fb.Color[px+3] = ca
		}
	}
}
