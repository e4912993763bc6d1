package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"rigmesh/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters for flat shading.
type LightConfig struct {
	LightDir mgl64.Vec3
	RimDir   mgl64.Vec3
	HalfMain mgl64.Vec3 // Blinn-Phong half vector
	Ambient  float64
	Hemi     float64
	Direct   float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig is a key light from the upper right, a rim light from
// behind, and a camera looking down -Z.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Normalize(mgl64.Vec3{0.45, 0.65, 0.6})
	rimDir := mathutil.Normalize(mgl64.Vec3{-0.5, 0.4, -0.65})
	viewDir := mgl64.Vec3{0, 0, 1}
	return LightConfig{
		LightDir: lightDir,
		RimDir:   rimDir,
		HalfMain: mathutil.Normalize(lightDir.Add(viewDir)),
		Ambient:  0.30,
		Hemi:     0.25,
		Direct:   0.85,
		Rim:      0.30,
		SpecInt:  0.25,
		SpecPow:  16.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a unit normal. Faces
// are lit from both sides.
func (lc *LightConfig) ComputeShade(n mgl64.Vec3) float64 {
	ndlMain := math.Abs(n.Dot(lc.LightDir))
	ndlRim := math.Abs(n.Dot(lc.RimDir))
	hemi := (1.0-math.Abs(n[1]))*0.5 + 0.5
	ndh := math.Max(math.Abs(n.Dot(lc.HalfMain)), 0)
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt
	return lc.Ambient + hemi*lc.Hemi + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// Shade lights an sRGB color: decode to linear, scale, tone map, re-encode.
func (lc *LightConfig) Shade(r, g, b uint8, shade float64) (uint8, uint8, uint8) {
	k := shade * lc.Exposure
	enc := func(c uint8) uint8 {
		return clamp255(math.Pow(ACESTonemap(srgbToLinear[c]*k), lc.InvGamma) * 255)
	}
	return enc(r), enc(g), enc(b)
}

// Precomputed sRGB-to-linear lookup table.
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
