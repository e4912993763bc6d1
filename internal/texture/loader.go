package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "github.com/ftrvxmtrx/tga"
)

// Load decodes a TGA, PNG or JPEG file into an NRGBA image.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	out := toNRGBA(img)
	if format == "jpeg" {
		opaque(out)
	}
	return out, nil
}

// toNRGBA converts any image to NRGBA format with its origin at (0,0).
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func opaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
}

// DefaultMatcap renders a size×size lit sphere in base color for use when no
// matcap file is configured. Pixels outside the sphere are transparent black
// and never sampled by unit normals.
func DefaultMatcap(size int, base color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	light := [3]float64{-0.4, 0.55, 0.73}
	half := float64(size-1) / 2
	if half <= 0 {
		half = 0.5
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx := (float64(x) - half) / half
			ny := (half - float64(y)) / half
			r2 := nx*nx + ny*ny
			if r2 > 1 {
				r2 = 1
			}
			nz := math.Sqrt(1 - r2)
			diff := math.Max(nx*light[0]+ny*light[1]+nz*light[2], 0)
			spec := math.Pow(diff, 24) * 0.35
			k := 0.25 + 0.75*diff
			c := color.NRGBA{
				R: channel(base.R, k, spec),
				G: channel(base.G, k, spec),
				B: channel(base.B, k, spec),
				A: 255,
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func channel(v uint8, k, spec float64) uint8 {
	return uint8(math.Min(float64(v)*k+255*spec, 255) + 0.5)
}
