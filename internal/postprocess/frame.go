package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// AlphaBounds is the smallest rectangle holding every non-transparent pixel,
// or the empty rectangle when there is none.
func AlphaBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	r := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[img.PixOffset(x, y)+3] == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}

// Frame crops img to its visible pixels and centers them on a transparent
// size×size canvas, scaled so the longer side covers fill of the canvas.
func Frame(img *image.NRGBA, size int, fill float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	src := AlphaBounds(img)
	if src.Empty() {
		return canvas
	}

	k := float64(size) * fill / math.Max(float64(src.Dx()), float64(src.Dy()))
	w := max(int(float64(src.Dx())*k+0.5), 1)
	h := max(int(float64(src.Dy())*k+0.5), 1)
	off := image.Pt((size-w)/2, (size-h)/2)
	dst := image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))}.Intersect(canvas.Bounds())
	draw.CatmullRom.Scale(canvas, dst, img, src, draw.Src, nil)
	return canvas
}

// RemoveSpecks clears 8-connected groups of visible pixels smaller than
// minRatio of all visible pixels. The largest group is always kept.
func RemoveSpecks(img *image.NRGBA, minRatio float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	visible := func(i int) bool {
		return img.Pix[img.PixOffset(b.Min.X+i%w, b.Min.Y+i/w)+3] > 0
	}

	labels := make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}
	var sizes []int
	total := 0
	queue := make([]int, 0, 1024)
	for start := range labels {
		if labels[start] >= 0 || !visible(start) {
			continue
		}
		id := len(sizes)
		labels[start] = id
		queue = append(queue[:0], start)
		n := 0
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			n++
			cx, cy := cur%w, cur/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := cx+dx, cy+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if labels[ni] < 0 && visible(ni) {
						labels[ni] = id
						queue = append(queue, ni)
					}
				}
			}
		}
		sizes = append(sizes, n)
		total += n
	}
	if len(sizes) <= 1 {
		return img
	}

	largest := 0
	for id, n := range sizes {
		if n > sizes[largest] {
			largest = id
		}
	}
	minSize := int(float64(total) * minRatio)

	out := image.NewNRGBA(b)
	copy(out.Pix, img.Pix)
	for i, id := range labels {
		if id < 0 || id == largest || sizes[id] >= minSize {
			continue
		}
		o := out.PixOffset(b.Min.X+i%w, b.Min.Y+i/w)
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = 0, 0, 0, 0
	}
	return out
}
