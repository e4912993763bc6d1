package raster

import (
	"image"
	"image/color"

	"rigmesh/internal/mathutil"
	"rigmesh/internal/mesh"
	"rigmesh/internal/viewmatrix"
)

// Options controls RenderMesh. The output is Size*Supersample pixels square;
// callers downsample it themselves.
type Options struct {
	Size        int
	Supersample int
	Margin      int // per side, before supersampling
	Camera      viewmatrix.Camera
	Color       color.NRGBA
	Matcap      *image.NRGBA
	Light       LightConfig
}

func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 2,
		Margin:      16,
		Camera:      viewmatrix.Camera{Yaw: 30, Pitch: -20},
		Color:       color.NRGBA{R: 160, G: 160, B: 170, A: 255},
		Light:       DefaultLightConfig(),
	}
}

// RenderMesh rasterizes m onto a transparent square canvas, fitted to its
// bounding box. Each quad is split into two triangles. Vertex normals, when
// the mesh has a full set, are interpolated across faces; otherwise every
// face is shaded flat.
func RenderMesh(m *mesh.QuadMesh, opts Options) *image.NRGBA {
	ss := max(opts.Supersample, 1)
	renderSize := max(opts.Size, 1) * ss
	fb := NewFrameBuffer(renderSize, renderSize)
	if len(m.Faces) == 0 {
		return fb.Image()
	}

	R := opts.Camera.View()
	center, span := viewmatrix.Fit(m.Vertices, R)
	scale := viewmatrix.PixelScale(span, renderSize, opts.Margin*ss)
	px, py, pz := viewmatrix.ProjectVertices(m.Vertices, R, center, scale, renderSize, opts.Camera)

	smooth := len(m.Normals) == len(m.Vertices)
	verts := make([]Vertex, len(m.Vertices))
	for i := range verts {
		// Depth in pixel units, matching X and Y.
		verts[i] = Vertex{X: px[i], Y: py[i], Z: pz[i] * scale}
		if smooth {
			verts[i].N = mathutil.Normalize(mathutil.TransformDir(R, m.Normals[i]))
		}
	}

	light := opts.Light
	mat := &Material{Base: opts.Color, Matcap: opts.Matcap, Light: &light}
	for _, t := range m.Triangles() {
		RasterizeTriangle(fb, verts[t[0]], verts[t[1]], verts[t[2]], mat, smooth)
	}
	return fb.Image()
}
